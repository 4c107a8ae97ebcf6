package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/waybill/internal/intake"
	"github.com/JaimeStill/waybill/pkg/handlers"
	"github.com/JaimeStill/waybill/pkg/openapi"
	"github.com/JaimeStill/waybill/pkg/routes"
	"github.com/JaimeStill/waybill/pkg/storage"
)

var downloadSpec = &openapi.Operation{
	Summary: "Download an archived upload",
	Parameters: []*openapi.Parameter{{
		Name:        "fingerprint",
		In:          "path",
		Required:    true,
		Description: "Lowercase hex SHA-256 of the upload",
		Schema:      &openapi.Schema{Type: "string", Pattern: "^[0-9a-f]{64}$"},
	}},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseFile("Original PDF", "application/pdf"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

// archiveHandler serves original uploads from blob storage by fingerprint.
type archiveHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArchiveHandler(store storage.System, logger *slog.Logger) *archiveHandler {
	return &archiveHandler{
		store:  store,
		logger: logger.With("handler", "documents"),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Tags:   []string{"Documents"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{fingerprint}", Handler: h.download, OpenAPI: downloadSpec},
		},
	}
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	fp := r.PathValue("fingerprint")
	if !intake.ValidFingerprint(fp) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, storage.ErrInvalidKey)
		return
	}

	result, err := h.store.Download(r.Context(), intake.ArchiveKey(fp))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", "application/pdf")

	if result.ContentLength > 0 {
		w.Header().Set(
			"Content-Length",
			strconv.FormatInt(result.ContentLength, 10),
		)
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fp+".pdf"),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}
