// Package memory provides an in-memory entry store, used in tests and
// development deployments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strata-cms/strata/pkg/strata"
)

// Store is an in-memory strata.EntryStore. Safe for concurrent use; all
// reads return defensive copies.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]strata.ContentEntry
}

// New creates an empty in-memory entry store.
func New() *Store {
	return &Store{entries: make(map[uuid.UUID]strata.ContentEntry)}
}

// ListByType implements strata.EntryStore. Entries come back ordered by
// creation time, oldest first, with the ID as tie-breaker so pagination
// windows are stable.
func (s *Store) ListByType(ctx context.Context, contentTypeID uuid.UUID) ([]strata.ContentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]strata.ContentEntry, 0)
	for _, e := range s.entries {
		if e.ContentTypeID == contentTypeID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID implements strata.EntryStore.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*strata.ContentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, strata.ErrEntryNotFound
	}
	out := cloneEntry(e)
	return &out, nil
}

// Create implements strata.EntryStore.
func (s *Store) Create(ctx context.Context, in strata.CreateEntryInput) (*strata.ContentEntry, error) {
	now := time.Now().UTC()
	entry := strata.ContentEntry{
		ID:            uuid.New(),
		ContentTypeID: in.ContentTypeID,
		Slug:          in.Slug,
		Status:        in.Status,
		FieldValues:   cloneValues(in.FieldValues),
		PublishedAt:   cloneTime(in.PublishedAt),
		ScheduledAt:   cloneTime(in.ScheduledAt),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entry.Status == "" {
		entry.Status = strata.StatusDraft
	}
	if entry.FieldValues == nil {
		entry.FieldValues = []strata.FieldValue{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry

	out := cloneEntry(entry)
	return &out, nil
}

// Update implements strata.EntryStore.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in strata.UpdateEntryInput) (*strata.ContentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, strata.ErrEntryNotFound
	}
	if in.Slug != nil {
		e.Slug = *in.Slug
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	if in.FieldValues != nil {
		e.FieldValues = cloneValues(in.FieldValues)
	}
	if in.PublishedAt != nil {
		e.PublishedAt = cloneTime(in.PublishedAt)
	}
	if in.ScheduledAt != nil {
		e.ScheduledAt = cloneTime(in.ScheduledAt)
	}
	e.UpdatedAt = time.Now().UTC()
	s.entries[id] = e

	out := cloneEntry(e)
	return &out, nil
}

// Delete implements strata.EntryStore. Deletes are hard deletes.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return strata.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

func cloneEntry(e strata.ContentEntry) strata.ContentEntry {
	out := e
	out.FieldValues = cloneValues(e.FieldValues)
	out.PublishedAt = cloneTime(e.PublishedAt)
	out.ScheduledAt = cloneTime(e.ScheduledAt)
	return out
}

func cloneValues(values []strata.FieldValue) []strata.FieldValue {
	if values == nil {
		return nil
	}
	out := make([]strata.FieldValue, len(values))
	copy(out, values)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
