package reviews

import (
	"errors"
	"net/http"
)

// Domain errors for review operations.
var (
	ErrNotFound     = errors.New("review not found")
	ErrDuplicate    = errors.New("review already exists")
	ErrEmptyComment = errors.New("review comment is empty")
)

// MapHTTPStatus maps review domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyComment) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
