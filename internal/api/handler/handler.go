// Package handler provides the HTTP handlers for the EvyRoad API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/api/response"
	"github.com/ssoward/evyroad/internal/certification"
	"github.com/ssoward/evyroad/internal/route"
	"github.com/ssoward/evyroad/internal/trip"
)

// validator is implemented by every request model.
type validator interface {
	Validate() []models.FieldError
}

// decode parses the JSON body into dst and runs its validation,
// writing the Problem response itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst validator) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	if errs := dst.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation failed", errs)
		return false
	}
	return true
}

// writeDomainError maps domain errors onto the problem taxonomy.
// Unknown errors become opaque 500s; the detail never leaks internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *trip.ValidationError
	var radiusErr *certification.OutsideRadiusError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "validation failed", validationErr.Errors)
	case errors.As(err, &radiusErr):
		response.BadRequest(w, r, radiusErr.Error(), nil)
	case errors.Is(err, trip.ErrTripNotFound),
		errors.Is(err, route.ErrRouteNotFound),
		errors.Is(err, certification.ErrAttemptNotFound),
		errors.Is(err, certification.ErrWaypointNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, trip.ErrNotTripOwner),
		errors.Is(err, certification.ErrNotAttemptOwner),
		errors.Is(err, certification.ErrSelfReview):
		response.Forbidden(w, r, err.Error())
	case errors.Is(err, trip.ErrInvalidTransition),
		errors.Is(err, trip.ErrTripNotActive),
		errors.Is(err, trip.ErrVersionConflict),
		errors.Is(err, certification.ErrInvalidTransition),
		errors.Is(err, certification.ErrAttemptNotInProgress),
		errors.Is(err, certification.ErrRouteNotAvailable):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, certification.ErrNoPhotos):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
