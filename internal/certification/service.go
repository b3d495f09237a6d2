package certification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ssoward/evyroad/internal/route"
	"github.com/ssoward/evyroad/internal/trip"
	"github.com/ssoward/evyroad/pkg/geo"
)

// TripCertifier stamps the certification sub-record on a trip once a
// review resolves. The trip service implements it.
type TripCertifier interface {
	SetCertification(ctx context.Context, tripID string, cert *trip.Certification) error
}

// ReviewDecision is the outcome a reviewer (or an automated decider)
// assigns to a submitted attempt.
type ReviewDecision struct {
	Certified            bool
	Level                trip.CertificationLevel
	Score                *float64
	CompletionPercentage *float64
}

// ReviewDecider produces a decision for a submitted attempt. No
// automated decider ships with the service; reviews are resolved
// manually through Resolve unless one is injected.
type ReviewDecider interface {
	Decide(ctx context.Context, a *Attempt, r *route.PredefinedRoute) (*ReviewDecision, error)
}

// Service runs the certification workflow against the route catalog
// and the attempt repository.
type Service struct {
	repo    Repository
	catalog *route.Catalog
	trips   TripCertifier
	decider ReviewDecider

	now func() time.Time
}

// NewService creates a certification service. decider may be nil, in
// which case Review is unavailable and Resolve is the only path out of
// pending_review.
func NewService(repo Repository, catalog *route.Catalog, trips TripCertifier, decider ReviewDecider) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		trips:   trips,
		decider: decider,
		now:     time.Now,
	}
}

// Start begins a certification attempt for a user on a route. Routes
// outside their seasonal window reject with ErrRouteNotAvailable.
func (s *Service) Start(ctx context.Context, userID, routeID, tripID string) (*Attempt, error) {
	r, err := s.catalog.Get(routeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !r.AvailableAt(now) {
		return nil, ErrRouteNotAvailable
	}

	a := &Attempt{
		ID:               "cert_" + uuid.NewString(),
		UserID:           userID,
		TripID:           tripID,
		RouteID:          routeID,
		Status:           StatusNotStarted,
		StartTime:        now,
		WaypointsVisited: []WaypointVisit{},
		Photos:           []SubmissionPhoto{},
		Progress: Progress{
			TotalWaypoints:         len(r.Waypoints),
			TotalRequiredWaypoints: r.RequiredWaypointCount(),
			RequiredPhotos:         r.Criteria.RequiredPhotos,
		},
	}
	if err := a.transition(ctx, eventBegin); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, a)
}

// CheckIn records the rider's position against a route waypoint.
// Check-in succeeds iff the great-circle distance to the waypoint's
// reference coordinate is within the route's maximum deviation radius.
func (s *Service) CheckIn(ctx context.Context, userID, attemptID, waypointID string, lat, lng float64) (*WaypointVisit, error) {
	a, err := s.getOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInProgress {
		return nil, ErrAttemptNotInProgress
	}

	r, err := s.catalog.Get(a.RouteID)
	if err != nil {
		return nil, err
	}
	wp, ok := r.FindWaypoint(waypointID)
	if !ok {
		return nil, ErrWaypointNotFound
	}

	distance := geo.DistanceMeters(lat, lng, wp.Lat, wp.Lng)
	if distance > r.Criteria.MaxDeviationRadius {
		return nil, &OutsideRadiusError{DistanceMeters: distance, MaxMeters: r.Criteria.MaxDeviationRadius}
	}

	visit := WaypointVisit{
		WaypointID:     wp.ID,
		Timestamp:      s.now(),
		Location:       trip.Location{Lat: lat, Lng: lng},
		DistanceMeters: distance,
		IsRequired:     wp.IsRequired,
	}

	// Repeat check-ins at the same waypoint are recorded but do not
	// advance the progress counters.
	first := !a.Visited(wp.ID)
	a.WaypointsVisited = append(a.WaypointsVisited, visit)
	if first {
		a.Progress.WaypointsCompleted++
		if wp.IsRequired {
			a.Progress.RequiredWaypointsCompleted++
		}
	}

	if _, err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return &visit, nil
}

// Submit attaches the photo batch and moves the attempt to
// pending_review. No automated accept/reject decision is made here.
func (s *Service) Submit(ctx context.Context, userID, attemptID string, photos []SubmissionPhoto, notes *string) (*Attempt, error) {
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}
	for _, p := range photos {
		if p.URL == "" || p.WaypointID == "" {
			return nil, ErrNoPhotos
		}
	}

	a, err := s.getOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	if err := a.transition(ctx, eventSubmit); err != nil {
		return nil, err
	}

	now := s.now()
	a.SubmittedAt = &now
	a.Photos = photos
	a.Notes = notes
	a.Progress.PhotosSubmitted = len(photos)

	return s.repo.Update(ctx, a)
}

// Resolve applies a review decision to a submitted attempt and stamps
// the certification sub-record on the underlying trip. The attempt's
// owner cannot resolve their own submission.
func (s *Service) Resolve(ctx context.Context, reviewerID, attemptID string, decision ReviewDecision) (*Attempt, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if reviewerID == a.UserID {
		return nil, ErrSelfReview
	}

	event := eventReject
	certStatus := trip.CertificationRejected
	if decision.Certified {
		event = eventCertify
		certStatus = trip.CertificationCertified
	}
	if err := a.transition(ctx, event); err != nil {
		return nil, err
	}

	now := s.now()
	a.ResolvedAt = &now

	cert := &trip.Certification{
		RouteID:              a.RouteID,
		Status:               certStatus,
		ReviewedAt:           &now,
		ReviewedBy:           &reviewerID,
		Score:                decision.Score,
		CompletionPercentage: decision.CompletionPercentage,
	}
	if decision.Certified {
		level := decision.Level
		if level == "" {
			level = trip.LevelBronze
		}
		cert.Level = &level
	}

	if err := s.trips.SetCertification(ctx, a.TripID, cert); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, a)
}

// Review asks the configured decider for a decision and applies it.
// With no decider it is a no-op returning the attempt unchanged.
func (s *Service) Review(ctx context.Context, attemptID string) (*Attempt, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if s.decider == nil {
		return a, nil
	}

	r, err := s.catalog.Get(a.RouteID)
	if err != nil {
		return nil, err
	}
	decision, err := s.decider.Decide(ctx, a, r)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, "system", a.ID, *decision)
}

// ListByUser returns a user's attempts in creation order.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Attempt, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns an attempt owned by the user.
func (s *Service) Get(ctx context.Context, userID, attemptID string) (*Attempt, error) {
	return s.getOwned(ctx, userID, attemptID)
}

func (s *Service) getOwned(ctx context.Context, userID, attemptID string) (*Attempt, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	return a, nil
}
