package strata

import (
	"context"

	"github.com/google/uuid"
)

// EntryStore is the persistence contract the engine orchestrates against.
// Implementations live under store/. A miss is reported as ErrEntryNotFound,
// never as a nil result with a nil error.
type EntryStore interface {
	ListByType(ctx context.Context, contentTypeID uuid.UUID) ([]ContentEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ContentEntry, error)
	Create(ctx context.Context, in CreateEntryInput) (*ContentEntry, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateEntryInput) (*ContentEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TypeRegistry resolves the set of known content types. Implementations live
// under registry/.
type TypeRegistry interface {
	ListTypes(ctx context.Context) ([]ContentType, error)
}

// Authenticator turns request credentials into a caller identity.
// Implementations return ErrNoCredentials when the request carries none and
// ErrInvalidCredentials when verification fails; the authentication
// middleware maps the two onto distinct error codes.
type Authenticator interface {
	Authenticate(ctx context.Context, req *Request) (*Identity, error)
}

// EventSink receives notifications after successful write operations. Sink
// failures are logged and never fail the triggering operation.
type EventSink interface {
	EntryCreated(ctx context.Context, entry *ContentEntry) error
	EntryUpdated(ctx context.Context, entry *ContentEntry) error
	EntryDeleted(ctx context.Context, entryID uuid.UUID) error
}
