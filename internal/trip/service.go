package trip

import (
	"context"
	"errors"
	"time"

	"github.com/ssoward/evyroad/internal/api/models"
)

// Service errors.
var (
	ErrNotTripOwner      = errors.New("not authorized to modify this trip")
	ErrInvalidTransition = errors.New("invalid trip status transition")
)

// Broadcaster publishes trip events to live subscribers. The stream hub
// implements it; a nil broadcaster disables publishing.
type Broadcaster interface {
	Broadcast(tripID, event string, data any)
}

// StatsInvalidator drops cached statistics for a user after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Service provides trip operations with ownership and lifecycle
// enforcement on top of a Repository.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
	invalidator StatsInvalidator
}

// NewService creates a new trip service. broadcaster and invalidator
// may be nil.
func NewService(repo Repository, broadcaster Broadcaster, invalidator StatsInvalidator) *Service {
	return &Service{repo: repo, broadcaster: broadcaster, invalidator: invalidator}
}

// Create creates a new trip for a user. Trips start in the planned
// state unless a start time in the past is supplied, in which case they
// are still planned; activation is an explicit status update.
func (s *Service) Create(ctx context.Context, userID string, input *models.TripCreateRequest) (*Trip, error) {
	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	startTime := time.Now()
	if input.StartTime != nil {
		startTime = *input.StartTime
	}

	t := &Trip{
		UserID:        userID,
		BikeID:        input.BikeID,
		Title:         input.Title,
		Description:   input.Description,
		Status:        StatusPlanned,
		StartLocation: toLocation(input.StartLocation),
		StartTime:     startTime,
		Waypoints:     []Waypoint{},
		Photos:        []Photo{},
		Tags:          input.Tags,
		Notes:         input.Notes,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if input.EndLocation != nil {
		loc := toLocation(*input.EndLocation)
		t.EndLocation = &loc
	}
	if input.PlannedDuration != nil {
		t.PlannedDuration = input.PlannedDuration
	}
	if input.IsPublic != nil {
		t.IsPublic = *input.IsPublic
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return created, nil
}

// Get retrieves a trip visible to the requesting user: the owner, a
// user it is shared with, or anyone when the trip is public. Trips the
// user cannot see are reported as not found.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*Trip, error) {
	t, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(t, userID) {
		return nil, ErrTripNotFound
	}
	return t, nil
}

// List retrieves a user's own trips per the given options.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]*Trip, error) {
	return s.repo.List(ctx, userID, opts)
}

// Search retrieves the user's own trips matching every supplied filter.
func (s *Service) Search(ctx context.Context, userID string, f Filters, opts ListOptions) ([]*Trip, error) {
	return s.repo.Search(ctx, userID, f, opts)
}

// Update patches a trip owned by the user. Status changes are validated
// against the lifecycle; completing a trip stamps the end time and
// recomputes metrics.
func (s *Service) Update(ctx context.Context, userID, tripID string, input *models.TripUpdateRequest) (*Trip, error) {
	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	t, err := s.getOwned(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		next := Status(*input.Status)
		if !next.Valid() {
			return nil, &ValidationError{Errors: []models.FieldError{
				{Field: "status", Message: "unknown status", Code: "invalid"},
			}}
		}
		if next != t.Status {
			if !t.Status.CanTransition(next) {
				return nil, ErrInvalidTransition
			}
			t.Status = next
			if next == StatusCompleted {
				if t.EndTime == nil {
					now := time.Now()
					t.EndTime = &now
				}
				RecalculateMetrics(t)
			}
		}
	}

	applyUpdate(t, input)

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}

	s.broadcast(tripID, "trip.updated", updated)
	s.invalidate(ctx, userID)
	return updated, nil
}

// Delete removes a trip owned by the user.
func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	if _, err := s.getOwned(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tripID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// AddWaypoint appends a GPS sample to an active trip owned by the user.
func (s *Service) AddWaypoint(ctx context.Context, userID, tripID string, input *models.WaypointRequest) (*Waypoint, error) {
	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if _, err := s.getOwned(ctx, userID, tripID); err != nil {
		return nil, err
	}

	ts := time.Now()
	if input.Timestamp != nil {
		ts = *input.Timestamp
	}
	wp := Waypoint{
		Lat:       input.Lat,
		Lng:       input.Lng,
		Timestamp: ts,
		Altitude:  input.Altitude,
		Speed:     input.Speed,
		Accuracy:  input.Accuracy,
	}

	stored, err := s.repo.AddWaypoint(ctx, tripID, wp)
	if err != nil {
		return nil, err
	}

	s.broadcast(tripID, "trip.waypoint", stored)
	s.invalidate(ctx, userID)
	return stored, nil
}

// AddPhoto attaches a photo record to a trip owned by the user.
func (s *Service) AddPhoto(ctx context.Context, userID, tripID string, input *models.PhotoRequest) (*Photo, error) {
	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if _, err := s.getOwned(ctx, userID, tripID); err != nil {
		return nil, err
	}

	p := Photo{
		URL:       input.URL,
		Caption:   input.Caption,
		Timestamp: time.Now(),
	}
	if input.Location != nil {
		loc := toLocation(*input.Location)
		p.Location = &loc
	}

	stored, err := s.repo.AddPhoto(ctx, tripID, p)
	if err != nil {
		return nil, err
	}

	s.broadcast(tripID, "trip.photo", stored)
	return stored, nil
}

// RecordWeather appends a weather snapshot to a trip owned by the user
// and returns the updated trip.
func (s *Service) RecordWeather(ctx context.Context, userID, tripID string, input *models.WeatherRequest) (*Trip, error) {
	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if _, err := s.getOwned(ctx, userID, tripID); err != nil {
		return nil, err
	}

	w := WeatherConditions{
		Temperature:   input.Temperature,
		Condition:     input.Condition,
		Humidity:      input.Humidity,
		WindSpeed:     input.WindSpeed,
		WindDirection: input.WindDirection,
		Visibility:    input.Visibility,
		Pressure:      input.Pressure,
		Icon:          input.Icon,
	}
	if err := s.repo.AddWeather(ctx, tripID, w); err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	s.broadcast(tripID, "trip.weather", &w)
	return t, nil
}

// SetCertification overwrites the certification sub-record on a trip.
// It is called by the certification workflow, not exposed over HTTP
// directly.
func (s *Service) SetCertification(ctx context.Context, tripID string, cert *Certification) error {
	if err := s.repo.SetCertification(ctx, tripID, cert); err != nil {
		return err
	}
	t, err := s.repo.Get(ctx, tripID)
	if err == nil {
		s.broadcast(tripID, "trip.certification", cert)
		s.invalidate(ctx, t.UserID)
	}
	return nil
}

// getOwned fetches a trip and verifies ownership. Unknown trips return
// ErrTripNotFound; trips owned by someone else return ErrNotTripOwner.
func (s *Service) getOwned(ctx context.Context, userID, tripID string) (*Trip, error) {
	t, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrNotTripOwner
	}
	return t, nil
}

func (s *Service) broadcast(tripID, event string, data any) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tripID, event, data)
	}
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
}

// visibleTo reports whether userID may read the trip.
func visibleTo(t *Trip, userID string) bool {
	if t.UserID == userID || t.IsPublic {
		return true
	}
	for _, shared := range t.SharedWith {
		if shared == userID {
			return true
		}
	}
	return false
}

// applyUpdate merges the patch onto the trip. Status is handled by the
// caller; derived metrics and waypoints are never writable here.
func applyUpdate(t *Trip, input *models.TripUpdateRequest) {
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.BikeID != nil {
		t.BikeID = input.BikeID
	}
	if input.EndLocation != nil {
		loc := toLocation(*input.EndLocation)
		t.EndLocation = &loc
	}
	if input.Notes != nil {
		t.Notes = input.Notes
	}
	if input.IsPublic != nil {
		t.IsPublic = *input.IsPublic
	}
	if input.SharedWith != nil {
		t.SharedWith = input.SharedWith
	}
	if input.Tags != nil {
		t.Tags = input.Tags
	}
	if input.OdometerStart != nil {
		t.OdometerStart = input.OdometerStart
	}
	if input.OdometerEnd != nil {
		t.OdometerEnd = input.OdometerEnd
	}
	if input.FuelUsed != nil {
		t.FuelUsed = input.FuelUsed
	}
	if input.FuelCost != nil {
		t.FuelCost = input.FuelCost
	}
}

func toLocation(loc models.Location) Location {
	return Location{Lat: loc.Lat, Lng: loc.Lng, Address: loc.Address}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
