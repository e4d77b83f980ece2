package strata

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentTypeNotFound indicates a path segment resolved to no known content type
	ErrContentTypeNotFound = errors.New("content type not found")

	// ErrEntryNotFound indicates a content entry was not found
	ErrEntryNotFound = errors.New("content entry not found")

	// ErrInvalidEntryStatus indicates an unknown entry status value
	ErrInvalidEntryStatus = errors.New("invalid entry status")

	// ErrInvalidContentType indicates a structurally invalid content type definition
	ErrInvalidContentType = errors.New("invalid content type definition")

	// ErrDuplicateSlug indicates an entry slug collision within a content type
	ErrDuplicateSlug = errors.New("duplicate entry slug")

	// ErrUniqueValueConflict indicates a value collision on a unique field
	ErrUniqueValueConflict = errors.New("unique field value conflict")

	// ErrStoreRejected indicates the entry store refused the operation as malformed
	ErrStoreRejected = errors.New("entry store rejected operation")

	// ErrNoCredentials indicates a request carried no credentials at all
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials that failed verification
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// EntryError represents an error related to entry operations
type EntryError struct {
	EntryID uuid.UUID
	Op      string
	Err     error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry operation %s failed for entry %s: %v", e.Op, e.EntryID, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// StoreError represents an error raised by an entry store implementation
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
