package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/pipeline"
)

// Rejected indica que o payload nunca vai passar, não adianta reprocessar.
func Rejected(err error) bool {
	return errors.Is(err, event.ErrMalformedEvent) ||
		errors.Is(err, event.ErrUnknownAPI) ||
		errors.Is(err, event.ErrInvalidEvent) ||
		errors.Is(err, pipeline.ErrMissingURL)
}

// StatusFor traduz o erro de uma execução em status HTTP.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, event.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, event.ErrUnknownAPI):
		return http.StatusNotFound
	case errors.Is(err, event.ErrInvalidEvent), errors.Is(err, pipeline.ErrMissingURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSinkFailure):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
