// Package store keeps application drafts in memory. Drafts are deliberately
// never written to durable storage: the aggregate exists only between wizard
// mount and final submission (or abandonment).
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/application/models"
	dErrors "brightpath/pkg/domain-errors"
)

// ErrNotFound is returned when the requested draft does not exist or has
// already been discarded.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "application draft not found")

// InMemoryStore stores drafts guarded by a RWMutex. All reads return deep
// copies so no caller ever holds a live pointer into the store.
type InMemoryStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*models.Draft
	now    func() time.Time
}

// Option configures the store.
type Option func(*InMemoryStore)

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// New constructs an empty in-memory draft store.
func New(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		drafts: make(map[uuid.UUID]*models.Draft),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create makes an empty draft positioned at the first step.
func (s *InMemoryStore) Create(_ context.Context) (*models.Draft, error) {
	now := s.now().UTC()
	draft := &models.Draft{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Step:      models.FirstStep,
		Status:    models.StatusCollecting,
	}
	s.mu.Lock()
	s.drafts[draft.ID] = draft
	s.mu.Unlock()
	return draft.Clone(), nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return draft.Clone(), nil
}

// Merge applies a partial update. Only keys present in the patch change.
func (s *InMemoryStore) Merge(_ context.Context, id uuid.UUID, patch models.Patch) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(draft)
	draft.UpdatedAt = s.now().UTC()
	return draft.Clone(), nil
}

// Save replaces the stored draft wholesale. The draft must already exist.
func (s *InMemoryStore) Save(_ context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draft.ID]; !ok {
		return ErrNotFound
	}
	stored := draft.Clone()
	stored.UpdatedAt = s.now().UTC()
	s.drafts[draft.ID] = stored
	return nil
}

// TransitionStatus atomically moves a draft between lifecycle states. It
// returns a conflict error when the draft is not in the expected state, which
// is how the wizard enforces the single-submission guard.
func (s *InMemoryStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[id]
	if !ok {
		return ErrNotFound
	}
	if draft.Status != from {
		return dErrors.New(dErrors.CodeConflict, "draft is "+string(draft.Status))
	}
	draft.Status = to
	draft.UpdatedAt = s.now().UTC()
	return nil
}

// Delete discards a draft. Deleting an absent draft is not an error: the
// sweep and the post-submission cleanup may race.
func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

// SweepExpired removes drafts idle longer than ttl and returns their IDs.
// Drafts mid-submission are never swept.
func (s *InMemoryStore) SweepExpired(_ context.Context, ttl time.Duration) []uuid.UUID {
	cutoff := s.now().UTC().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []uuid.UUID
	for id, draft := range s.drafts {
		if draft.Status == models.StatusSubmitting {
			continue
		}
		if draft.UpdatedAt.Before(cutoff) {
			delete(s.drafts, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Len reports the number of live drafts, for metrics and readiness checks.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
