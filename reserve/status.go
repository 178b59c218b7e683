package reserve

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error from a manager operation to the status code the
// HTTP layer should answer with.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		authz      *AuthorizationError
		notFound   *NotFoundError
		conflict   *ConflictError
		capacity   *CapacityError
		duplicate  *DuplicateRequestError
		processed  *AlreadyProcessedError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &capacity),
		errors.As(err, &duplicate), errors.As(err, &processed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
