package certification

import (
	"context"
	"sync"
)

// Repository is the attempt persistence contract.
type Repository interface {
	// Create stores a new attempt.
	Create(ctx context.Context, a *Attempt) (*Attempt, error)

	// Get returns the attempt or ErrAttemptNotFound.
	Get(ctx context.Context, id string) (*Attempt, error)

	// Update replaces the stored record.
	Update(ctx context.Context, a *Attempt) (*Attempt, error)

	// ListByUser returns a user's attempts in creation order.
	ListByUser(ctx context.Context, userID string) ([]*Attempt, error)
}

// MemoryRepository is the in-memory Repository: a primary map keyed by
// attempt id plus a per-user index kept in insertion order.
type MemoryRepository struct {
	mu           sync.RWMutex
	attempts     map[string]*Attempt
	userAttempts map[string][]string
}

// NewMemoryRepository creates an empty in-memory attempt repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		attempts:     make(map[string]*Attempt),
		userAttempts: make(map[string][]string),
	}
}

// Create stores a new attempt.
func (r *MemoryRepository) Create(_ context.Context, a *Attempt) (*Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := a.clone()
	r.attempts[stored.ID] = stored
	r.userAttempts[stored.UserID] = append(r.userAttempts[stored.UserID], stored.ID)
	return stored.clone(), nil
}

// Get returns the attempt or ErrAttemptNotFound.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return a.clone(), nil
}

// Update replaces the stored record.
func (r *MemoryRepository) Update(_ context.Context, a *Attempt) (*Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.attempts[a.ID]; !ok {
		return nil, ErrAttemptNotFound
	}
	stored := a.clone()
	r.attempts[a.ID] = stored
	return stored.clone(), nil
}

// ListByUser returns a user's attempts in creation order.
func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.userAttempts[userID]
	out := make([]*Attempt, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.attempts[id]; ok {
			out = append(out, a.clone())
		}
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
