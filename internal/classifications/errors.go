package classifications

import (
	"errors"
	"net/http"

	"github.com/ziggway/insight/internal/pipeline"
)

// Domain errors for classification operations.
var (
	ErrNotFound    = errors.New("classification not found")
	ErrRunNotFound = errors.New("classification run not found")
	ErrDuplicate   = errors.New("classification already exists")
	ErrNoPending   = errors.New("no pending reviews to classify")
	ErrInvalidEnum = errors.New("invalid classification value")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRunNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNoPending) || errors.Is(err, ErrInvalidEnum) ||
		errors.Is(err, pipeline.ErrEmptyInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
