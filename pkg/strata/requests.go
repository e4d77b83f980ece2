package strata

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request/input DTOs

// EntryPayload is the request body accepted by the create and update
// operations. FieldValues stays raw JSON so the normalizer can report
// non-array payloads itself; a nil pointer means the key was absent.
type EntryPayload struct {
	Slug        *string         `json:"slug"`
	Status      *string         `json:"status"`
	ScheduledAt *string         `json:"scheduledAt"`
	FieldValues json.RawMessage `json:"fieldValues"`
}

// CreateEntryInput contains parameters for creating an entry in the store.
type CreateEntryInput struct {
	ContentTypeID uuid.UUID
	Slug          string
	Status        EntryStatus
	FieldValues   []FieldValue
	PublishedAt   *time.Time
	ScheduledAt   *time.Time
}

// UpdateEntryInput contains parameters for updating an entry in the store.
// Nil pointers keep the stored values; a non-nil FieldValues replaces the
// whole set.
type UpdateEntryInput struct {
	Slug        *string
	Status      *EntryStatus
	FieldValues []FieldValue
	PublishedAt *time.Time
	ScheduledAt *time.Time
}
