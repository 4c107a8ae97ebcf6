package drafts

import (
	"errors"
	"net/http"
)

// Domain errors for draft operations.
var (
	ErrNotFound       = errors.New("draft not found")
	ErrDuplicate      = errors.New("draft version already exists")
	ErrFrozen         = errors.New("draft is frozen and can no longer be edited")
	ErrAlreadyFrozen  = errors.New("draft has already been frozen")
	ErrInvalidComment = errors.New("comment requires field_name and message")
	ErrInvalidID      = errors.New("invalid draft id")
	ErrInvalidRecord  = errors.New("invalid record")
)

// MapHTTPStatus maps draft domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrFrozen), errors.Is(err, ErrAlreadyFrozen):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidComment), errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidRecord):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
