package trip

import (
	"context"
	"time"
)

// SortField selects the ordering key for trip listings.
type SortField string

// Supported sort fields.
const (
	SortByStartTime SortField = "startTime"
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
)

// SortOrder is the listing direction.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultListLimit is applied when a listing request does not set one.
const DefaultListLimit = 50

// ListOptions controls filtering, ordering, and pagination of listings.
// The zero value means: all statuses, startTime descending, first 50.
type ListOptions struct {
	Status    *Status
	Limit     int
	Offset    int
	SortBy    SortField
	SortOrder SortOrder
}

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.SortBy == "" {
		o.SortBy = SortByStartTime
	}
	if o.SortOrder == "" {
		o.SortOrder = SortDesc
	}
	return o
}

// Filters is the composable search predicate set. Every set field must
// hold (logical AND across dimensions); Tags matches if any tag matches.
type Filters struct {
	Status      *Status
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
	BikeID      *string
	IsPublic    *bool
	HasPhotos   bool
	IsCertified bool
	MinDistance *float64
	MaxDistance *float64
	Query       string
}

// Repository is the trip persistence contract. The memory
// implementation is the default backend; the Postgres implementation
// adds durable storage with optimistic locking.
type Repository interface {
	// Create assigns an id and timestamps, stores the trip, and
	// registers it in the owner's index.
	Create(ctx context.Context, t *Trip) (*Trip, error)

	// Get returns the trip or ErrTripNotFound. Ownership is not
	// checked here; that is the service layer's responsibility.
	Get(ctx context.Context, id string) (*Trip, error)

	// List returns a user's trips per the given options.
	List(ctx context.Context, userID string, opts ListOptions) ([]*Trip, error)

	// Update replaces the stored record, refreshing UpdatedAt. The
	// Postgres implementation rejects stale versions with
	// ErrVersionConflict.
	Update(ctx context.Context, t *Trip) (*Trip, error)

	// Delete removes the trip from the store and the owner's index.
	// Deleting an unknown id returns ErrTripNotFound.
	Delete(ctx context.Context, id string) error

	// AddWaypoint appends a waypoint to an active trip and recomputes
	// derived metrics. Non-active trips return ErrTripNotActive.
	AddWaypoint(ctx context.Context, tripID string, wp Waypoint) (*Waypoint, error)

	// AddPhoto appends a photo record regardless of trip status.
	AddPhoto(ctx context.Context, tripID string, p Photo) (*Photo, error)

	// AddWeather appends to the weather history and replaces the
	// current snapshot.
	AddWeather(ctx context.Context, tripID string, w WeatherConditions) error

	// SetCertification overwrites the certification sub-record
	// wholesale; nil clears it.
	SetCertification(ctx context.Context, tripID string, cert *Certification) error

	// Search returns the user's trips matching every supplied filter,
	// ordered and paginated per opts.
	Search(ctx context.Context, userID string, f Filters, opts ListOptions) ([]*Trip, error)
}
