package intake

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/waybill/internal/recovery"
)

// Domain errors for the upload pipeline.
var (
	ErrNoInput           = errors.New("no document supplied")
	ErrUnsupportedFormat = errors.New("document is not a PDF")
	ErrTimeout           = errors.New("document processing timed out")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, recovery.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
