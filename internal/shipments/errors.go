package shipments

import (
	"errors"
	"net/http"
)

// Domain errors for shipment operations.
var (
	ErrNotFound      = errors.New("shipment not found")
	ErrDuplicate     = errors.New("shipment already exists for draft")
	ErrInvalidID     = errors.New("invalid shipment id")
	ErrInvalidFormat = errors.New("unsupported export format")
	ErrInvalidQuery  = errors.New("invalid search request")
)

// MapHTTPStatus maps shipment domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
