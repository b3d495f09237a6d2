package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ssoward/evyroad/internal/api/middleware"
	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/api/response"
	"github.com/ssoward/evyroad/internal/certification"
	"github.com/ssoward/evyroad/internal/trip"
)

// CertificationHandler serves the certification workflow endpoints.
type CertificationHandler struct {
	certs *certification.Service
}

// NewCertificationHandler creates a CertificationHandler.
func NewCertificationHandler(certs *certification.Service) *CertificationHandler {
	return &CertificationHandler{certs: certs}
}

// Start handles POST /certifications.
func (h *CertificationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input models.StartCertificationRequest
	if !decode(w, r, &input) {
		return
	}

	attempt, err := h.certs.Start(r.Context(), middleware.GetUserID(r.Context()), input.RouteID, input.TripID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, r, "/api/v1/certifications/"+attempt.ID, attempt)
}

// CheckIn handles POST /certifications/{id}/waypoints.
func (h *CertificationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var input models.WaypointCheckInRequest
	if !decode(w, r, &input) {
		return
	}

	visit, err := h.certs.CheckIn(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"),
		input.WaypointID,
		input.Lat,
		input.Lng,
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, r, "", visit)
}

// Submit handles POST /certifications/{id}/submit.
func (h *CertificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input models.SubmitCertificationRequest
	if !decode(w, r, &input) {
		return
	}

	photos := make([]certification.SubmissionPhoto, 0, len(input.Photos))
	for _, p := range input.Photos {
		photos = append(photos, certification.SubmissionPhoto{
			URL:        p.URL,
			WaypointID: p.WaypointID,
			Location: trip.Location{
				Lat:     p.Location.Lat,
				Lng:     p.Location.Lng,
				Address: p.Location.Address,
			},
		})
	}

	attempt, err := h.certs.Submit(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), photos, input.Notes)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, attempt)
}

// Review handles POST /certifications/{id}/review. The authenticated
// caller is recorded as the reviewer.
func (h *CertificationHandler) Review(w http.ResponseWriter, r *http.Request) {
	var input models.ReviewCertificationRequest
	if !decode(w, r, &input) {
		return
	}

	decision := certification.ReviewDecision{
		Certified:            input.Certified,
		Score:                input.Score,
		CompletionPercentage: input.CompletionPercentage,
	}
	if input.Level != nil {
		decision.Level = trip.CertificationLevel(*input.Level)
	}

	attempt, err := h.certs.Resolve(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), decision)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, attempt)
}

type attemptListResponse struct {
	Certifications []*certification.Attempt `json:"certifications"`
}

// ListMine handles GET /certifications/me.
func (h *CertificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.certs.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, attemptListResponse{Certifications: attempts})
}

// Get handles GET /certifications/{id}.
func (h *CertificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.certs.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, attempt)
}
