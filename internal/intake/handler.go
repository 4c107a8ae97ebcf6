package intake

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/waybill/pkg/formatting"
	"github.com/JaimeStill/waybill/pkg/handlers"
	"github.com/JaimeStill/waybill/pkg/routes"
)

// Handler provides the document upload endpoint.
type Handler struct {
	pipeline      *Pipeline
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler over pipeline with the given upload size limit.
func NewHandler(pipeline *Pipeline, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		pipeline:      pipeline,
		logger:        logger.With("handler", "uploads"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for upload endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/uploads",
		Tags:    []string{"Uploads"},
		Schemas: Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: Spec.Upload},
		},
	}
}

// Upload processes a multipart form upload carrying the PDF in the "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			limit := formatting.FormatBytes(h.maxUploadSize, 1)
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, fmt.Errorf("%w (%s)", ErrFileTooLarge, limit))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoInput)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoInput)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoInput)
		return
	}

	result, err := h.pipeline.Execute(r.Context(), data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}
