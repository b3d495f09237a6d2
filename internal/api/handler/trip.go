package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssoward/evyroad/internal/api/middleware"
	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/api/response"
	"github.com/ssoward/evyroad/internal/trip"
	"github.com/ssoward/evyroad/pkg/polyline"
)

// TripHandler serves the trip CRUD, search, and stats endpoints.
type TripHandler struct {
	trips *trip.Service
	stats *trip.StatsService
}

// NewTripHandler creates a TripHandler.
func NewTripHandler(trips *trip.Service, stats *trip.StatsService) *TripHandler {
	return &TripHandler{trips: trips, stats: stats}
}

// tripListResponse is the paginated listing envelope.
type tripListResponse struct {
	Trips []*trip.Trip             `json:"trips"`
	Meta  models.PagedResponseMeta `json:"meta"`
}

// Create handles POST /trips.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.TripCreateRequest
	if !decode(w, r, &input) {
		return
	}

	created, err := h.trips.Create(r.Context(), middleware.GetUserID(r.Context()), &input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.Created(w, r, "/api/v1/trips/"+created.ID, created)
}

// Get handles GET /trips/{id}.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.trips.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, t)
}

// List handles GET /trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, errs := parseListOptions(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	trips, err := h.trips.List(r.Context(), middleware.GetUserID(r.Context()), opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, tripListResponse{
		Trips: trips,
		Meta: models.PagedResponseMeta{
			Limit:  opts.Limit,
			Offset: opts.Offset,
			Count:  len(trips),
		},
	})
}

// Search handles GET /trips/search.
func (h *TripHandler) Search(w http.ResponseWriter, r *http.Request) {
	opts, errs := parseListOptions(r)
	filters, filterErrs := parseFilters(r)
	errs = append(errs, filterErrs...)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}
	filters.Status = opts.Status

	trips, err := h.trips.Search(r.Context(), middleware.GetUserID(r.Context()), filters, opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, tripListResponse{
		Trips: trips,
		Meta: models.PagedResponseMeta{
			Limit:  opts.Limit,
			Offset: opts.Offset,
			Count:  len(trips),
		},
	})
}

// Update handles PATCH /trips/{id}.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.TripUpdateRequest
	if !decode(w, r, &input) {
		return
	}

	updated, err := h.trips.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), &input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /trips/{id}.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.trips.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// AddWaypoint handles POST /trips/{id}/waypoints.
func (h *TripHandler) AddWaypoint(w http.ResponseWriter, r *http.Request) {
	var input models.WaypointRequest
	if !decode(w, r, &input) {
		return
	}

	wp, err := h.trips.AddWaypoint(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), &input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, r, "", wp)
}

// AddPhoto handles POST /trips/{id}/photos.
func (h *TripHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var input models.PhotoRequest
	if !decode(w, r, &input) {
		return
	}

	photo, err := h.trips.AddPhoto(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), &input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, r, "", photo)
}

// RecordWeather handles POST /trips/{id}/weather.
func (h *TripHandler) RecordWeather(w http.ResponseWriter, r *http.Request) {
	var input models.WeatherRequest
	if !decode(w, r, &input) {
		return
	}

	updated, err := h.trips.RecordWeather(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), &input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, updated)
}

// trackResponse is the encoded-track view of a trip.
type trackResponse struct {
	Polyline   string  `json:"polyline"`
	PointCount int     `json:"pointCount"`
	DistanceKm float64 `json:"distanceKm"`
}

// Track handles GET /trips/{id}/track, returning the recorded
// waypoints as an encoded polyline. The optional thin parameter (in
// meters) drops points closer together than the given gap.
func (h *TripHandler) Track(w http.ResponseWriter, r *http.Request) {
	var errs []models.FieldError
	thin := parseFloatParam(r.URL.Query().Get("thin"), "thin", &errs)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	t, err := h.trips.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	points := make([]polyline.Point, 0, len(t.Waypoints))
	for _, wp := range t.Waypoints {
		points = append(points, polyline.Point{Lat: wp.Lat, Lng: wp.Lng})
	}
	if thin != nil {
		points = polyline.Thin(points, *thin)
	}

	response.JSON(w, r, http.StatusOK, trackResponse{
		Polyline:   polyline.Encode(points),
		PointCount: len(points),
		DistanceKm: polyline.LengthKm(points),
	})
}

// Stats handles GET /stats/me.
func (h *TripHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.UserStats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}

func parseListOptions(r *http.Request) (trip.ListOptions, []models.FieldError) {
	var opts trip.ListOptions
	var errs []models.FieldError
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := trip.Status(s)
		switch status {
		case trip.StatusPlanned, trip.StatusActive, trip.StatusCompleted, trip.StatusCancelled:
			opts.Status = &status
		default:
			errs = append(errs, models.FieldError{Field: "status", Message: "unknown status", Code: "enum"})
		}
	}

	opts.Limit = parseIntParam(q.Get("limit"), "limit", &errs)
	opts.Offset = parseIntParam(q.Get("offset"), "offset", &errs)

	if s := q.Get("sortBy"); s != "" {
		sortBy := trip.SortField(s)
		switch sortBy {
		case trip.SortByStartTime, trip.SortByCreatedAt, trip.SortByTitle:
			opts.SortBy = sortBy
		default:
			errs = append(errs, models.FieldError{Field: "sortBy", Message: "unknown sort field", Code: "enum"})
		}
	}
	if s := q.Get("sortOrder"); s != "" {
		order := trip.SortOrder(s)
		switch order {
		case trip.SortAsc, trip.SortDesc:
			opts.SortOrder = order
		default:
			errs = append(errs, models.FieldError{Field: "sortOrder", Message: "sortOrder must be asc or desc", Code: "enum"})
		}
	}

	return opts, errs
}

func parseFilters(r *http.Request) (trip.Filters, []models.FieldError) {
	var f trip.Filters
	var errs []models.FieldError
	q := r.URL.Query()

	f.Query = q.Get("q")

	if s := q.Get("tags"); s != "" {
		for _, tag := range strings.Split(s, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	if s := q.Get("bikeId"); s != "" {
		f.BikeID = &s
	}
	if s := q.Get("isPublic"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "isPublic", Message: "isPublic must be a boolean", Code: "type"})
		} else {
			f.IsPublic = &v
		}
	}
	f.HasPhotos = q.Get("hasPhotos") == "true"
	f.IsCertified = q.Get("isCertified") == "true"

	f.MinDistance = parseFloatParam(q.Get("minDistance"), "minDistance", &errs)
	f.MaxDistance = parseFloatParam(q.Get("maxDistance"), "maxDistance", &errs)
	f.StartDate = parseTimeParam(q.Get("startDate"), "startDate", &errs)
	f.EndDate = parseTimeParam(q.Get("endDate"), "endDate", &errs)

	return f, errs
}

func parseIntParam(s, field string, errs *[]models.FieldError) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		*errs = append(*errs, models.FieldError{Field: field, Message: field + " must be a non-negative integer", Code: "type"})
		return 0
	}
	return v
}

func parseFloatParam(s, field string, errs *[]models.FieldError) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*errs = append(*errs, models.FieldError{Field: field, Message: field + " must be a number", Code: "type"})
		return nil
	}
	return &v
}

// parseTimeParam accepts RFC3339 or a bare date.
func parseTimeParam(s, field string, errs *[]models.FieldError) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	*errs = append(*errs, models.FieldError{Field: field, Message: field + " must be an RFC3339 timestamp or YYYY-MM-DD date", Code: "type"})
	return nil
}
