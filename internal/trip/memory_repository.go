package trip

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory implementation of Repository: a
// primary map keyed by trip id plus a per-user index of trip ids kept
// in insertion order. It is the default backend; data does not survive
// a restart.
type MemoryRepository struct {
	mu        sync.RWMutex
	trips     map[string]*Trip
	userTrips map[string][]string
}

// NewMemoryRepository creates an empty in-memory trip repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		trips:     make(map[string]*Trip),
		userTrips: make(map[string][]string),
	}
}

// Create assigns an id and timestamps and stores the trip.
func (r *MemoryRepository) Create(_ context.Context, t *Trip) (*Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored := t.clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Waypoints == nil {
		stored.Waypoints = []Waypoint{}
	}
	if stored.Photos == nil {
		stored.Photos = []Photo{}
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	r.trips[stored.ID] = stored
	r.userTrips[stored.UserID] = append(r.userTrips[stored.UserID], stored.ID)

	return stored.clone(), nil
}

// Get returns the trip or ErrTripNotFound.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	return t.clone(), nil
}

// List returns a user's trips filtered, sorted, and paginated per opts.
func (r *MemoryRepository) List(_ context.Context, userID string, opts ListOptions) ([]*Trip, error) {
	r.mu.RLock()
	trips := r.collectUserTrips(userID)
	r.mu.RUnlock()

	opts = opts.normalized()
	if opts.Status != nil {
		trips = filterTrips(trips, func(t *Trip) bool { return t.Status == *opts.Status })
	}
	sortTrips(trips, opts)
	return paginate(trips, opts), nil
}

// Update replaces the stored record. ID, UserID, and CreatedAt are
// taken from the existing record so they can never change here.
func (r *MemoryRepository) Update(_ context.Context, t *Trip) (*Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.trips[t.ID]
	if !ok {
		return nil, ErrTripNotFound
	}

	stored := t.clone()
	stored.UserID = existing.UserID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()

	r.trips[t.ID] = stored
	return stored.clone(), nil
}

// Delete removes the trip and its index entry.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok {
		return ErrTripNotFound
	}

	delete(r.trips, id)

	ids := r.userTrips[t.UserID]
	for i, tripID := range ids {
		if tripID == id {
			r.userTrips[t.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// AddWaypoint appends to an active trip and recomputes metrics.
func (r *MemoryRepository) AddWaypoint(_ context.Context, tripID string, wp Waypoint) (*Waypoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok {
		return nil, ErrTripNotFound
	}
	if t.Status != StatusActive {
		return nil, ErrTripNotActive
	}

	wp.ID = uuid.NewString()
	t.Waypoints = append(t.Waypoints, wp)
	t.UpdatedAt = time.Now()
	RecalculateMetrics(t)

	stored := wp
	return &stored, nil
}

// AddPhoto appends a photo regardless of trip status.
func (r *MemoryRepository) AddPhoto(_ context.Context, tripID string, p Photo) (*Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok {
		return nil, ErrTripNotFound
	}

	p.ID = uuid.NewString()
	t.Photos = append(t.Photos, p)
	t.UpdatedAt = time.Now()

	stored := p
	return &stored, nil
}

// AddWeather appends to history and replaces the current snapshot.
func (r *MemoryRepository) AddWeather(_ context.Context, tripID string, w WeatherConditions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok {
		return ErrTripNotFound
	}

	t.WeatherHistory = append(t.WeatherHistory, w)
	t.Weather = &w
	t.UpdatedAt = time.Now()
	return nil
}

// SetCertification overwrites the certification sub-record.
func (r *MemoryRepository) SetCertification(_ context.Context, tripID string, cert *Certification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok {
		return ErrTripNotFound
	}

	if cert != nil {
		c := *cert
		t.Certification = &c
	} else {
		t.Certification = nil
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Search applies every supplied filter, then sorts and paginates.
func (r *MemoryRepository) Search(_ context.Context, userID string, f Filters, opts ListOptions) ([]*Trip, error) {
	r.mu.RLock()
	trips := r.collectUserTrips(userID)
	r.mu.RUnlock()

	trips = filterTrips(trips, func(t *Trip) bool { return matches(t, f) })

	opts = opts.normalized()
	sortTrips(trips, opts)
	return paginate(trips, opts), nil
}

// Clear empties the store. For tests.
func (r *MemoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips = make(map[string]*Trip)
	r.userTrips = make(map[string][]string)
}

// collectUserTrips returns deep copies in insertion order. Callers must
// hold at least a read lock.
func (r *MemoryRepository) collectUserTrips(userID string) []*Trip {
	ids := r.userTrips[userID]
	trips := make([]*Trip, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.trips[id]; ok {
			trips = append(trips, t.clone())
		}
	}
	return trips
}

func filterTrips(trips []*Trip, keep func(*Trip) bool) []*Trip {
	out := trips[:0]
	for _, t := range trips {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// matches reports whether t satisfies every supplied filter dimension.
func matches(t *Trip, f Filters) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.StartDate != nil && t.StartTime.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.StartTime.After(*f.EndDate) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(t.Tags, f.Tags) {
		return false
	}
	if f.BikeID != nil && (t.BikeID == nil || *t.BikeID != *f.BikeID) {
		return false
	}
	if f.IsPublic != nil && t.IsPublic != *f.IsPublic {
		return false
	}
	if f.HasPhotos && len(t.Photos) == 0 {
		return false
	}
	if f.IsCertified && (t.Certification == nil || t.Certification.Status != CertificationCertified) {
		return false
	}
	if f.MinDistance != nil && t.Metrics.TotalDistance < *f.MinDistance {
		return false
	}
	if f.MaxDistance != nil && t.Metrics.TotalDistance > *f.MaxDistance {
		return false
	}
	if f.Query != "" && !matchesQuery(t, f.Query) {
		return false
	}
	return true
}

func hasAnyTag(tripTags, wanted []string) bool {
	for _, w := range wanted {
		for _, tag := range tripTags {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// matchesQuery does a case-insensitive substring match against title,
// description, and tags.
func matchesQuery(t *Trip, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// sortTrips orders trips per opts. The sort is stable so equal keys
// keep insertion order.
func sortTrips(trips []*Trip, opts ListOptions) {
	less := func(a, b *Trip) bool {
		switch opts.SortBy {
		case SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortByTitle:
			return a.Title < b.Title
		default:
			return a.StartTime.Before(b.StartTime)
		}
	}

	sort.SliceStable(trips, func(i, j int) bool {
		if opts.SortOrder == SortAsc {
			return less(trips[i], trips[j])
		}
		return less(trips[j], trips[i])
	})
}

func paginate(trips []*Trip, opts ListOptions) []*Trip {
	if opts.Offset >= len(trips) {
		return []*Trip{}
	}
	end := opts.Offset + opts.Limit
	if end > len(trips) {
		end = len(trips)
	}
	return trips[opts.Offset:end]
}

// Ensure MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)
