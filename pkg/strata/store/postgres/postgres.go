// Package postgres provides an entry store backed by PostgreSQL via pgx.
//
// Expected schema:
//
//	CREATE TABLE content_entries (
//	    id              UUID PRIMARY KEY,
//	    content_type_id UUID NOT NULL,
//	    slug            TEXT NOT NULL DEFAULT '',
//	    status          TEXT NOT NULL DEFAULT 'draft',
//	    field_values    JSONB NOT NULL DEFAULT '[]',
//	    published_at    TIMESTAMPTZ,
//	    scheduled_at    TIMESTAMPTZ,
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    updated_at      TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE UNIQUE INDEX content_entries_type_slug
//	    ON content_entries (content_type_id, slug) WHERE slug <> '';
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strata-cms/strata/pkg/strata"
)

// DBTX is an interface that allows us to use either a database connection
// or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements strata.EntryStore using PostgreSQL
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL entry store
func New(db DBTX) strata.EntryStore {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL entry store with a connection pool
func NewWithPool(pool *pgxpool.Pool) strata.EntryStore {
	return &Store{db: pool}
}

const entryColumns = `id, content_type_id, slug, status, field_values,
	       published_at, scheduled_at, created_at, updated_at`

func (s *Store) ListByType(ctx context.Context, contentTypeID uuid.UUID) ([]strata.ContentEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM content_entries WHERE content_type_id = $1
        ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, contentTypeID)
	if err != nil {
		return nil, s.handlePostgresError("list entries", err)
	}
	defer rows.Close()

	entries := make([]strata.ContentEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, s.handlePostgresError("scan entry", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("iterate entry rows", err)
	}

	return entries, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*strata.ContentEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM content_entries WHERE id = $1`

	entry, err := scanEntry(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, strata.ErrEntryNotFound
		}
		return nil, s.handlePostgresError("get entry", err)
	}

	return entry, nil
}

func (s *Store) Create(ctx context.Context, in strata.CreateEntryInput) (*strata.ContentEntry, error) {
	now := time.Now().UTC()
	entry := strata.ContentEntry{
		ID:            uuid.New(),
		ContentTypeID: in.ContentTypeID,
		Slug:          in.Slug,
		Status:        in.Status,
		FieldValues:   in.FieldValues,
		PublishedAt:   in.PublishedAt,
		ScheduledAt:   in.ScheduledAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entry.Status == "" {
		entry.Status = strata.StatusDraft
	}
	if entry.FieldValues == nil {
		entry.FieldValues = []strata.FieldValue{}
	}

	raw, err := json.Marshal(entry.FieldValues)
	if err != nil {
		return nil, fmt.Errorf("encode field values: %w", err)
	}

	query := `
		INSERT INTO content_entries (
			id, content_type_id, slug, status, field_values,
			published_at, scheduled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.Exec(ctx, query,
		entry.ID, entry.ContentTypeID, entry.Slug, entry.Status, raw,
		entry.PublishedAt, entry.ScheduledAt, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, s.handlePostgresError("create entry", err)
	}

	return &entry, nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, in strata.UpdateEntryInput) (*strata.ContentEntry, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	argIndex := 2

	if in.Slug != nil {
		sets = append(sets, fmt.Sprintf("slug = $%d", argIndex))
		args = append(args, *in.Slug)
		argIndex++
	}
	if in.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *in.Status)
		argIndex++
	}
	if in.FieldValues != nil {
		raw, err := json.Marshal(in.FieldValues)
		if err != nil {
			return nil, fmt.Errorf("encode field values: %w", err)
		}
		sets = append(sets, fmt.Sprintf("field_values = $%d", argIndex))
		args = append(args, raw)
		argIndex++
	}
	if in.PublishedAt != nil {
		sets = append(sets, fmt.Sprintf("published_at = $%d", argIndex))
		args = append(args, *in.PublishedAt)
		argIndex++
	}
	if in.ScheduledAt != nil {
		sets = append(sets, fmt.Sprintf("scheduled_at = $%d", argIndex))
		args = append(args, *in.ScheduledAt)
		argIndex++
	}

	query := fmt.Sprintf(`
		UPDATE content_entries SET %s WHERE id = $%d
		RETURNING `+entryColumns, strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	entry, err := scanEntry(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, strata.ErrEntryNotFound
		}
		return nil, s.handlePostgresError("update entry", err)
	}

	return entry, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM content_entries WHERE id = $1", id)
	if err != nil {
		return s.handlePostgresError("delete entry", err)
	}
	if tag.RowsAffected() == 0 {
		return strata.ErrEntryNotFound
	}
	return nil
}

// rowScanner lets scanEntry accept both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*strata.ContentEntry, error) {
	var (
		entry strata.ContentEntry
		raw   []byte
	)
	err := row.Scan(
		&entry.ID, &entry.ContentTypeID, &entry.Slug, &entry.Status, &raw,
		&entry.PublishedAt, &entry.ScheduledAt, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}

	entry.FieldValues = []strata.FieldValue{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entry.FieldValues); err != nil {
			return nil, fmt.Errorf("decode field values for entry %s: %w", entry.ID, err)
		}
	}
	return &entry, nil
}

// Error handling helper
func (s *Store) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return fmt.Errorf("%w: %s", strata.ErrDuplicateSlug, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", strata.ErrUniqueValueConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced record not found", strata.ErrStoreRejected)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required column %s is missing", strata.ErrStoreRejected, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		}
	}

	return &strata.StoreError{Op: operation, Err: err}
}
