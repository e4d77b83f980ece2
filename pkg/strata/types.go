package strata

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldType is the domain type for content field kinds.
type FieldType string

// Field type constants (typed).
const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeTextarea FieldType = "TEXTAREA"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeEmail    FieldType = "EMAIL"
	FieldTypeURL      FieldType = "URL"
	FieldTypeDate     FieldType = "DATE"
	FieldTypeBoolean  FieldType = "BOOLEAN"
	FieldTypePhone    FieldType = "PHONE"
	FieldTypeColor    FieldType = "COLOR"
	FieldTypeSlug     FieldType = "SLUG"
	FieldTypePassword FieldType = "PASSWORD"
	FieldTypeJSON     FieldType = "JSON"
)

// KnownFieldTypes lists every field type the engine ships rules or explicit
// pass-through behavior for. Schema tooling warns on anything outside it.
var KnownFieldTypes = []FieldType{
	FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeEmail,
	FieldTypeURL, FieldTypeDate, FieldTypeBoolean, FieldTypePhone,
	FieldTypeColor, FieldTypeSlug, FieldTypePassword, FieldTypeJSON,
}

// ParseFieldType normalizes a raw field type string to its canonical
// uppercase form. Unknown values are returned uppercased rather than
// rejected; the validator treats them as unconstrained.
func ParseFieldType(raw string) FieldType {
	return FieldType(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsKnownFieldType reports whether ft is one of the shipped field types.
func IsKnownFieldType(ft FieldType) bool {
	for _, known := range KnownFieldTypes {
		if ft == known {
			return true
		}
	}
	return false
}

// EntryStatus is the domain type for entry lifecycle states.
type EntryStatus string

// Entry status constants (typed).
const (
	StatusDraft     EntryStatus = "draft"
	StatusPublished EntryStatus = "published"
	StatusScheduled EntryStatus = "scheduled"
	StatusArchived  EntryStatus = "archived"
)

// ParseEntryStatus parses a raw status string case-insensitively into its
// canonical lowercase form.
func ParseEntryStatus(raw string) (EntryStatus, error) {
	switch EntryStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", fmt.Errorf("%w: %q (valid statuses: draft, published, scheduled, archived)", ErrInvalidEntryStatus, raw)
	}
}

// PasswordStrength classifies a password against the scoring heuristic.
type PasswordStrength string

// Password strength constants (typed).
const (
	StrengthWeak   PasswordStrength = "weak"
	StrengthMedium PasswordStrength = "medium"
	StrengthStrong PasswordStrength = "strong"
)

// ContentType is a user-defined schema describing a named set of typed
// fields. Slugs are unique across all content types; field ids are unique
// within one content type.
type ContentType struct {
	ID          uuid.UUID      `json:"id"`
	Slug        string         `json:"slug"`
	DisplayName string         `json:"displayName"`
	Fields      []ContentField `json:"fields"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// FieldByID returns the field with the given id, or nil when the content
// type declares no such field.
func (ct *ContentType) FieldByID(id string) *ContentField {
	for i := range ct.Fields {
		if ct.Fields[i].ID == id {
			return &ct.Fields[i]
		}
	}
	return nil
}

// Validate checks the structural invariants of a content type definition:
// a URL-safe slug, a display name, and non-empty, unique field ids.
func (ct *ContentType) Validate() error {
	if strings.TrimSpace(ct.Slug) == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidContentType)
	}
	if !slugPattern.MatchString(ct.Slug) {
		return fmt.Errorf("%w: slug %q is not URL-safe", ErrInvalidContentType, ct.Slug)
	}
	if strings.TrimSpace(ct.DisplayName) == "" {
		return fmt.Errorf("%w: displayName is required for %q", ErrInvalidContentType, ct.Slug)
	}
	seen := make(map[string]struct{}, len(ct.Fields))
	for _, f := range ct.Fields {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("%w: %q declares a field without an id", ErrInvalidContentType, ct.Slug)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: %q declares duplicate field id %q", ErrInvalidContentType, ct.Slug, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// ContentField is a single named, typed attribute within a content type.
// Order determines display sequence only; it has no validation semantics.
type ContentField struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	DisplayName  string            `json:"displayName"`
	Type         FieldType         `json:"fieldType"`
	Required     bool              `json:"required"`
	Unique       bool              `json:"unique,omitempty"`
	DefaultValue string            `json:"defaultValue,omitempty"`
	Validation   *FieldConstraints `json:"validation,omitempty"`
	Order        int               `json:"order"`
}

// Options returns the validator options derived from the field declaration.
func (f *ContentField) Options() FieldOptions {
	opts := FieldOptions{Required: f.Required}
	if f.Validation != nil {
		opts.Min = f.Validation.Min
		opts.Max = f.Validation.Max
		opts.MinLength = f.Validation.MinLength
		opts.MaxLength = f.Validation.MaxLength
		opts.Pattern = f.Validation.Pattern
	}
	return opts
}

// FieldConstraints carries the optional per-field validation bounds. Nil
// pointers mean the bound is not set; zero is a legal bound value.
type FieldConstraints struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// ContentEntry is one record conforming to a content type's schema. Every
// FieldID in FieldValues references an existing field on the entry's content
// type; deletes are hard deletes.
type ContentEntry struct {
	ID            uuid.UUID    `json:"id"`
	ContentTypeID uuid.UUID    `json:"contentTypeId"`
	Slug          string       `json:"slug,omitempty"`
	Status        EntryStatus  `json:"status"`
	FieldValues   []FieldValue `json:"fieldValues"`
	PublishedAt   *time.Time   `json:"publishedAt,omitempty"`
	ScheduledAt   *time.Time   `json:"scheduledAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// FieldValue is a single normalized (fieldId, value) pair on an entry.
type FieldValue struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// ValidationResult is the universal return shape of every field validator.
// Strength is populated for PASSWORD fields only.
type ValidationResult struct {
	Valid    bool             `json:"isValid"`
	Message  string           `json:"message,omitempty"`
	Strength PasswordStrength `json:"strength,omitempty"`
}
