package httpx

import (
	"errors"
	"net/http"

	"github.com/mowems/rbac-system/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Internal detail never
// reaches the client; unmapped errors collapse to a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrNoToken),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrTokenInvalid):
		Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrAlreadyExists),
		errors.Is(err, shared.ErrAlreadyAssigned):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrMissingSecret),
		errors.Is(err, shared.ErrMissingDefaultRole):
		Error(w, http.StatusInternalServerError, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
