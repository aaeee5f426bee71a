package http

import (
	"errors"
	"net/http"

	authDomain "approval-engine/internal/domain/authority"
	delDomain "approval-engine/internal/domain/delegation"
	reqDomain "approval-engine/internal/domain/request"
	"approval-engine/internal/usecase/registry"
	"approval-engine/internal/usecase/resolver"
)

// statusFor maps domain errors onto HTTP codes. Configuration gaps are 422
// (fix the setup, do not retry), invariant violations 409 (the response body
// names the violated rule), authorization 403.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNoAuthorityDefined),
		errors.Is(err, registry.ErrNoWorkflowMatch),
		errors.Is(err, reqDomain.ErrCommentsRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, delDomain.ErrConstraintViolation),
		errors.Is(err, delDomain.ErrInvalidStatus),
		errors.Is(err, reqDomain.ErrInvalidTransition),
		errors.Is(err, reqDomain.ErrStaleLevel),
		errors.Is(err, authDomain.ErrInvalidBounds),
		errors.Is(err, authDomain.ErrPrimaryExists):
		return http.StatusConflict
	case errors.Is(err, reqDomain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, reqDomain.ErrNotFound),
		errors.Is(err, delDomain.ErrNotFound),
		errors.Is(err, authDomain.ErrNotFound),
		errors.Is(err, authDomain.ErrHolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrNoPrimaryHolder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func fail(err error) (int, ErrorResponse) {
	return statusFor(err), ErrorResponse{Error: err.Error()}
}
