package api

import (
	"errors"
	"net/http"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// httpStatusForError maps a domain error to an HTTP status code and a
// user-facing message. Non-domain errors become opaque 500s.
func httpStatusForError(err error) (int, string) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return http.StatusInternalServerError, "internal error"
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, domErr.Message
	case core.ErrCatNotFound:
		return http.StatusNotFound, domErr.Message
	case core.ErrCatState:
		return http.StatusConflict, domErr.Message
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, domErr.Message
	case core.ErrCatNetwork:
		return http.StatusBadGateway, domErr.Message
	default:
		return http.StatusInternalServerError, domErr.Message
	}
}
