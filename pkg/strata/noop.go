package strata

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink. It is the
// default sink when none is configured.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// EntryCreated does nothing and returns nil
func (n *NoopEventSink) EntryCreated(ctx context.Context, entry *ContentEntry) error {
	return nil
}

// EntryUpdated does nothing and returns nil
func (n *NoopEventSink) EntryUpdated(ctx context.Context, entry *ContentEntry) error {
	return nil
}

// EntryDeleted does nothing and returns nil
func (n *NoopEventSink) EntryDeleted(ctx context.Context, entryID uuid.UUID) error {
	return nil
}

// SlogEventSink logs entry lifecycle events and takes no other action.
// Useful for development and debugging.
type SlogEventSink struct {
	logger *slog.Logger
}

// NewSlogEventSink creates an event sink that logs each event
func NewSlogEventSink(logger *slog.Logger) EventSink {
	return &SlogEventSink{logger: logger}
}

// EntryCreated logs the entry creation event
func (l *SlogEventSink) EntryCreated(ctx context.Context, entry *ContentEntry) error {
	l.logger.InfoContext(ctx, "entry created",
		"entryId", entry.ID, "contentTypeId", entry.ContentTypeID, "status", entry.Status)
	return nil
}

// EntryUpdated logs the entry update event
func (l *SlogEventSink) EntryUpdated(ctx context.Context, entry *ContentEntry) error {
	l.logger.InfoContext(ctx, "entry updated",
		"entryId", entry.ID, "contentTypeId", entry.ContentTypeID, "status", entry.Status)
	return nil
}

// EntryDeleted logs the entry deletion event
func (l *SlogEventSink) EntryDeleted(ctx context.Context, entryID uuid.UUID) error {
	l.logger.InfoContext(ctx, "entry deleted", "entryId", entryID)
	return nil
}
