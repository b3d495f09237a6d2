package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is the durable implementation of Repository. Core
// columns are structured for indexing; the nested sequences (waypoints,
// photos, weather, certification) live in a JSONB document. Updates use
// a version-counter compare-and-swap so concurrent writers cannot
// silently clobber each other, which the memory backend does not guard
// against.
//
// Expected schema:
//
//	CREATE TABLE trips (
//	    id         TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL,
//	    status     TEXT NOT NULL,
//	    title      TEXT NOT NULL,
//	    start_time TIMESTAMPTZ NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    version    BIGINT NOT NULL DEFAULT 1,
//	    doc        JSONB NOT NULL
//	);
//	CREATE INDEX trips_user_id_idx ON trips (user_id, start_time DESC);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create assigns an id and timestamps and inserts the trip.
func (r *PostgresRepository) Create(ctx context.Context, t *Trip) (*Trip, error) {
	now := time.Now()
	stored := t.clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Version = 1
	if stored.Waypoints == nil {
		stored.Waypoints = []Waypoint{}
	}
	if stored.Photos == nil {
		stored.Photos = []Photo{}
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode trip: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (id, user_id, status, title, start_time, created_at, updated_at, version, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, stored.ID, stored.UserID, stored.Status, stored.Title, stored.StartTime,
		stored.CreatedAt, stored.UpdatedAt, stored.Version, doc)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}

	return stored, nil
}

// Get returns the trip or ErrTripNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Trip, error) {
	return r.get(ctx, r.pool, id, false)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PostgresRepository) get(ctx context.Context, q queryRower, id string, forUpdate bool) (*Trip, error) {
	sql := `SELECT doc, version, created_at, updated_at FROM trips WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var doc []byte
	var version int64
	var createdAt, updatedAt time.Time
	err := q.QueryRow(ctx, sql, id).Scan(&doc, &version, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select trip: %w", err)
	}

	var t Trip
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	t.Version = version
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	return &t, nil
}

// List returns a user's trips per opts. The status filter and ordering
// are pushed to SQL; pagination likewise.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) ([]*Trip, error) {
	opts = opts.normalized()

	sql := `SELECT doc, version, created_at, updated_at FROM trips WHERE user_id = $1`
	args := []any{userID}
	if opts.Status != nil {
		sql += ` AND status = $2`
		args = append(args, *opts.Status)
	}
	sql += ` ORDER BY ` + sortColumn(opts.SortBy) + ` ` + sortDirection(opts.SortOrder) +
		`, created_at ASC` // stable tie-break on insertion order
	sql += fmt.Sprintf(` LIMIT %d OFFSET %d`, opts.Limit, opts.Offset)

	return r.queryTrips(ctx, sql, args...)
}

// Update replaces the stored record iff the caller's version is still
// current, bumping the version counter.
func (r *PostgresRepository) Update(ctx context.Context, t *Trip) (*Trip, error) {
	stored := t.clone()
	stored.UpdatedAt = time.Now()
	nextVersion := stored.Version + 1

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode trip: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE trips
		SET status = $2, title = $3, start_time = $4, updated_at = $5, version = $6, doc = $7
		WHERE id = $1 AND version = $8
	`, stored.ID, stored.Status, stored.Title, stored.StartTime, stored.UpdatedAt,
		nextVersion, doc, stored.Version)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the id is unknown or another writer got there first.
		if _, getErr := r.Get(ctx, stored.ID); errors.Is(getErr, ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, ErrVersionConflict
	}

	stored.Version = nextVersion
	return stored, nil
}

// Delete removes the trip row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

// AddWaypoint appends a waypoint inside a transaction so the metric
// recomputation sees a consistent document.
func (r *PostgresRepository) AddWaypoint(ctx context.Context, tripID string, wp Waypoint) (*Waypoint, error) {
	var stored Waypoint
	err := r.withTrip(ctx, tripID, func(t *Trip) error {
		if t.Status != StatusActive {
			return ErrTripNotActive
		}
		wp.ID = uuid.NewString()
		t.Waypoints = append(t.Waypoints, wp)
		RecalculateMetrics(t)
		stored = wp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// AddPhoto appends a photo record.
func (r *PostgresRepository) AddPhoto(ctx context.Context, tripID string, p Photo) (*Photo, error) {
	var stored Photo
	err := r.withTrip(ctx, tripID, func(t *Trip) error {
		p.ID = uuid.NewString()
		t.Photos = append(t.Photos, p)
		stored = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// AddWeather appends to history and replaces the current snapshot.
func (r *PostgresRepository) AddWeather(ctx context.Context, tripID string, w WeatherConditions) error {
	return r.withTrip(ctx, tripID, func(t *Trip) error {
		t.WeatherHistory = append(t.WeatherHistory, w)
		t.Weather = &w
		return nil
	})
}

// SetCertification overwrites the certification sub-record.
func (r *PostgresRepository) SetCertification(ctx context.Context, tripID string, cert *Certification) error {
	return r.withTrip(ctx, tripID, func(t *Trip) error {
		t.Certification = cert
		return nil
	})
}

// Search fetches the user's rows ordered per opts and applies the
// filter set in Go, so both backends share one predicate definition.
func (r *PostgresRepository) Search(ctx context.Context, userID string, f Filters, opts ListOptions) ([]*Trip, error) {
	opts = opts.normalized()

	sql := `SELECT doc, version, created_at, updated_at FROM trips WHERE user_id = $1
		ORDER BY ` + sortColumn(opts.SortBy) + ` ` + sortDirection(opts.SortOrder) + `, created_at ASC`
	trips, err := r.queryTrips(ctx, sql, userID)
	if err != nil {
		return nil, err
	}

	trips = filterTrips(trips, func(t *Trip) bool { return matches(t, f) })
	return paginate(trips, opts), nil
}

// withTrip runs mutate against the locked row and writes the document
// back with a version bump.
func (r *PostgresRepository) withTrip(ctx context.Context, tripID string, mutate func(*Trip) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t, err := r.get(ctx, tx, tripID, true)
	if err != nil {
		return err
	}

	if err := mutate(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	t.Version++

	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode trip: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE trips SET status = $2, updated_at = $3, version = $4, doc = $5 WHERE id = $1
	`, t.ID, t.Status, t.UpdatedAt, t.Version, doc)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) queryTrips(ctx context.Context, sql string, args ...any) ([]*Trip, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var doc []byte
		var version int64
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&doc, &version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		var t Trip
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decode trip: %w", err)
		}
		t.Version = version
		t.CreatedAt = createdAt
		t.UpdatedAt = updatedAt
		trips = append(trips, &t)
	}
	if trips == nil {
		trips = []*Trip{}
	}
	return trips, rows.Err()
}

func sortColumn(f SortField) string {
	switch f {
	case SortByCreatedAt:
		return "created_at"
	case SortByTitle:
		return "title"
	default:
		return "start_time"
	}
}

func sortDirection(o SortOrder) string {
	if o == SortAsc {
		return "ASC"
	}
	return "DESC"
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
