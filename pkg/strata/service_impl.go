package strata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pagination defaults for list operations.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Execute runs one request through the composed pipeline. A panic anywhere
// in the chain is recovered here and surfaced as INTERNAL_SERVER_ERROR; no
// partial chain state reaches the caller.
func (s *service) Execute(ctx context.Context, req *Request) (resp *Response) {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "panic recovered in request pipeline",
				"panic", rec,
				"method", req.Method,
				"path", req.Path,
				"requestId", req.ID,
			)
			resp = Fail(CodeInternalServerError, "An unexpected error occurred")
		}
		s.finalize(resp, req, start)
	}()

	resp = s.handler(ctx, req)
	return resp
}

// finalize stamps envelope metadata and applies the production policy of
// omitting internal error details.
func (s *service) finalize(resp *Response, req *Request, start time.Time) {
	if resp == nil {
		return
	}
	resp.Meta = Meta{
		RequestID:      req.ID,
		Timestamp:      time.Now().UTC(),
		Version:        s.version,
		ProcessingTime: time.Since(start).String(),
	}
	if s.environment == EnvProduction && resp.Error != nil {
		switch resp.Error.Code {
		case CodeInternalServerError, CodeBadRequest:
			resp.Error.Details = nil
		}
	}
}

// dispatch is the terminal pipeline handler: route resolution followed by
// the verb/entry-id state machine.
func (s *service) dispatch(ctx context.Context, req *Request) *Response {
	match, errResp := s.router.Resolve(ctx, req.Path)
	if errResp != nil {
		return errResp
	}

	switch strings.ToUpper(req.Method) {
	case http.MethodGet:
		if match.EntryID == "" {
			return s.listEntries(ctx, req, match.ContentType)
		}
		return s.getEntry(ctx, match.ContentType, match.EntryID)
	case http.MethodPost:
		if match.EntryID != "" {
			return Fail(CodeMethodNotAllowed, "POST cannot target an entry id; POST to the content type collection instead")
		}
		return s.createEntry(ctx, req, match.ContentType)
	case http.MethodPut:
		if match.EntryID == "" {
			return Fail(CodeBadRequest, "Entry id is required for updates")
		}
		return s.updateEntry(ctx, req, match.ContentType, match.EntryID)
	case http.MethodDelete:
		if match.EntryID == "" {
			return Fail(CodeBadRequest, "Entry id is required for deletes")
		}
		return s.deleteEntry(ctx, match.ContentType, match.EntryID)
	default:
		return Fail(CodeMethodNotAllowed,
			fmt.Sprintf("Method %s is not supported. Supported methods: GET, POST, PUT, DELETE", req.Method))
	}
}

// List operation

func (s *service) listEntries(ctx context.Context, req *Request, ct *ContentType) *Response {
	page, errResp := positiveIntParam(req.Query, "page", DefaultPage)
	if errResp != nil {
		return errResp
	}
	limit, errResp := positiveIntParam(req.Query, "limit", DefaultLimit)
	if errResp != nil {
		return errResp
	}

	entries, err := s.store.ListByType(ctx, ct.ID)
	if err != nil {
		return s.storeFailure(ctx, "list", err)
	}

	if search := strings.TrimSpace(req.Query.Get("search")); search != "" {
		entries = filterEntries(entries, ct, search)
	}

	total := len(entries)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	start := (page - 1) * limit
	if start >= total && total > 0 {
		return Fail(CodeBadRequest,
			fmt.Sprintf("Page %d is out of range; only %d page(s) available", page, totalPages))
	}

	window := []ContentEntry{}
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		window = entries[start:end]
	}

	return OK("Content entries retrieved", ListResult{
		Entries: window,
		Pagination: Pagination{
			Page:            page,
			Limit:           limit,
			Total:           total,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	})
}

// positiveIntParam reads a positive integer query parameter, falling back to
// def when the parameter is absent.
func positiveIntParam(q url.Values, name string, def int) (int, *Response) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, Fail(CodeBadRequest, fmt.Sprintf("Parameter '%s' must be a positive integer", name))
	}
	return n, nil
}

// filterEntries applies the case-insensitive substring search across entry
// slugs, field values, and the schema display names of populated fields.
func filterEntries(entries []ContentEntry, ct *ContentType, search string) []ContentEntry {
	needle := strings.ToLower(search)
	matched := make([]ContentEntry, 0, len(entries))
	for i := range entries {
		if entryMatches(&entries[i], ct, needle) {
			matched = append(matched, entries[i])
		}
	}
	return matched
}

func entryMatches(entry *ContentEntry, ct *ContentType, needle string) bool {
	if strings.Contains(strings.ToLower(entry.Slug), needle) {
		return true
	}
	for _, fv := range entry.FieldValues {
		if strings.Contains(strings.ToLower(fv.Value), needle) {
			return true
		}
		if f := ct.FieldByID(fv.FieldID); f != nil &&
			strings.Contains(strings.ToLower(f.DisplayName), needle) {
			return true
		}
	}
	return false
}

// Single-entry operations

func (s *service) getEntry(ctx context.Context, ct *ContentType, rawID string) *Response {
	entry, errResp := s.findEntry(ctx, ct, rawID)
	if errResp != nil {
		return errResp
	}
	return OK("Content entry retrieved", entry)
}

// findEntry fetches an entry and verifies it belongs to the content type. A
// malformed id, a missing entry and an entry under another content type all
// produce the same NOT_FOUND response, so callers cannot probe for the
// existence of entries outside the resolved type.
func (s *service) findEntry(ctx context.Context, ct *ContentType, rawID string) (*ContentEntry, *Response) {
	notFound := func() *Response {
		return Fail(CodeNotFound,
			fmt.Sprintf("Content entry '%s' not found for content type '%s'", rawID, ct.Slug))
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, notFound()
	}
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, notFound()
		}
		return nil, s.storeFailure(ctx, "get", err)
	}
	if entry.ContentTypeID != ct.ID {
		return nil, notFound()
	}
	return entry, nil
}

func (s *service) createEntry(ctx context.Context, req *Request, ct *ContentType) *Response {
	payload, errResp := decodePayload(req.Body)
	if errResp != nil {
		return errResp
	}

	values, verrs := NormalizeEntryValuesJSON(ct, payload.FieldValues, NormalizeOptions{RequireAllFields: true})
	if len(verrs) > 0 {
		return Fail(CodeValidationError, "Content entry validation failed", verrs...)
	}

	status := StatusDraft
	if payload.Status != nil {
		parsed, err := ParseEntryStatus(*payload.Status)
		if err != nil {
			return Fail(CodeValidationError, "Content entry validation failed", err.Error())
		}
		status = parsed
	}

	scheduledAt, errResp := parseScheduledAt(payload)
	if errResp != nil {
		return errResp
	}

	slug := ""
	if payload.Slug != nil {
		slug = strings.TrimSpace(*payload.Slug)
	}
	if errResp := validateEntrySlug(slug); errResp != nil {
		return errResp
	}

	if errResp := s.checkWriteConflicts(ctx, ct, nil, slug, values); errResp != nil {
		return errResp
	}

	in := CreateEntryInput{
		ContentTypeID: ct.ID,
		Slug:          slug,
		Status:        status,
		FieldValues:   values,
		ScheduledAt:   scheduledAt,
	}
	if status == StatusPublished {
		now := time.Now().UTC()
		in.PublishedAt = &now
	}

	entry, err := s.store.Create(ctx, in)
	if err != nil {
		return s.storeFailure(ctx, "create", err)
	}

	if err := s.events.EntryCreated(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "event sink failed",
			"error", &EntryError{EntryID: entry.ID, Op: "create", Err: err})
	}
	return Created("Content entry created", entry)
}

func (s *service) updateEntry(ctx context.Context, req *Request, ct *ContentType, rawID string) *Response {
	entry, errResp := s.findEntry(ctx, ct, rawID)
	if errResp != nil {
		return errResp
	}

	payload, errResp := decodePayload(req.Body)
	if errResp != nil {
		return errResp
	}

	in := UpdateEntryInput{}

	// A fieldValues touch replaces and re-validates the complete set;
	// partial field updates are not supported.
	if hasJSONValue(payload.FieldValues) {
		values, verrs := NormalizeEntryValuesJSON(ct, payload.FieldValues, NormalizeOptions{RequireAllFields: true})
		if len(verrs) > 0 {
			return Fail(CodeValidationError, "Content entry validation failed", verrs...)
		}
		in.FieldValues = values
	}

	if payload.Slug != nil {
		slug := strings.TrimSpace(*payload.Slug)
		if errResp := validateEntrySlug(slug); errResp != nil {
			return errResp
		}
		in.Slug = &slug
	}

	if payload.Status != nil {
		parsed, err := ParseEntryStatus(*payload.Status)
		if err != nil {
			return Fail(CodeValidationError, "Content entry validation failed", err.Error())
		}
		in.Status = &parsed
		if parsed == StatusPublished && entry.Status != StatusPublished {
			now := time.Now().UTC()
			in.PublishedAt = &now
		}
	}

	scheduledAt, errResp := parseScheduledAt(payload)
	if errResp != nil {
		return errResp
	}
	if scheduledAt != nil {
		in.ScheduledAt = scheduledAt
	}

	newSlug := ""
	if in.Slug != nil {
		newSlug = *in.Slug
	}
	if newSlug != "" || in.FieldValues != nil {
		if errResp := s.checkWriteConflicts(ctx, ct, &entry.ID, newSlug, in.FieldValues); errResp != nil {
			return errResp
		}
	}

	updated, err := s.store.Update(ctx, entry.ID, in)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return Fail(CodeNotFound,
				fmt.Sprintf("Content entry '%s' not found for content type '%s'", rawID, ct.Slug))
		}
		return s.storeFailure(ctx, "update", err)
	}

	if err := s.events.EntryUpdated(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "event sink failed",
			"error", &EntryError{EntryID: updated.ID, Op: "update", Err: err})
	}
	return OK("Content entry updated", updated)
}

func (s *service) deleteEntry(ctx context.Context, ct *ContentType, rawID string) *Response {
	entry, errResp := s.findEntry(ctx, ct, rawID)
	if errResp != nil {
		return errResp
	}

	if err := s.store.Delete(ctx, entry.ID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return Fail(CodeNotFound,
				fmt.Sprintf("Content entry '%s' not found for content type '%s'", rawID, ct.Slug))
		}
		return s.storeFailure(ctx, "delete", err)
	}

	if err := s.events.EntryDeleted(ctx, entry.ID); err != nil {
		s.logger.WarnContext(ctx, "event sink failed",
			"error", &EntryError{EntryID: entry.ID, Op: "delete", Err: err})
	}
	return OK("Content entry deleted", map[string]string{"id": entry.ID.String()})
}

// Write helpers

// decodePayload parses a JSON request body. An empty body decodes into an
// empty payload so that validation, not JSON plumbing, reports what is
// missing.
func decodePayload(body json.RawMessage) (*EntryPayload, *Response) {
	payload := &EntryPayload{}
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, Fail(CodeBadRequest, fmt.Sprintf("Request body is not valid JSON: %v", err))
	}
	return payload, nil
}

// hasJSONValue reports whether a raw JSON field was supplied with a usable
// value; absent keys and explicit null both count as "not supplied".
func hasJSONValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// parseScheduledAt parses the optional RFC 3339 scheduledAt payload field.
func parseScheduledAt(payload *EntryPayload) (*time.Time, *Response) {
	if payload.ScheduledAt == nil || strings.TrimSpace(*payload.ScheduledAt) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*payload.ScheduledAt))
	if err != nil {
		return nil, Fail(CodeValidationError, "Content entry validation failed",
			fmt.Sprintf("scheduledAt must be an RFC 3339 timestamp: %v", err))
	}
	return &t, nil
}

// validateEntrySlug rejects a non-empty entry slug that is not URL-safe.
func validateEntrySlug(slug string) *Response {
	if slug == "" {
		return nil
	}
	if res := ValidateField(FieldTypeSlug, slug, FieldOptions{}); !res.Valid {
		return Fail(CodeValidationError, "Content entry validation failed", "slug: "+res.Message)
	}
	return nil
}

// checkWriteConflicts enforces entry-slug uniqueness and unique-flagged
// field values within one content type. excludeID skips the entry being
// updated. Types without unique fields and writes without a slug skip the
// sibling scan entirely.
func (s *service) checkWriteConflicts(ctx context.Context, ct *ContentType, excludeID *uuid.UUID, slug string, values []FieldValue) *Response {
	uniqueFields := uniqueFieldSet(ct)
	if slug == "" && len(uniqueFields) == 0 {
		return nil
	}

	siblings, err := s.store.ListByType(ctx, ct.ID)
	if err != nil {
		return s.storeFailure(ctx, "conflict-check", err)
	}

	supplied := make(map[string]string, len(values))
	for _, v := range values {
		if _, ok := uniqueFields[v.FieldID]; ok && v.Value != "" {
			supplied[v.FieldID] = v.Value
		}
	}

	for i := range siblings {
		sib := &siblings[i]
		if excludeID != nil && sib.ID == *excludeID {
			continue
		}
		if slug != "" && sib.Slug == slug {
			return Fail(CodeConflict,
				fmt.Sprintf("Entry slug '%s' already exists for content type '%s'", slug, ct.Slug))
		}
		for _, fv := range sib.FieldValues {
			if want, ok := supplied[fv.FieldID]; ok && fv.Value == want {
				return Fail(CodeConflict,
					fmt.Sprintf("Value for unique field '%s' already exists", uniqueFields[fv.FieldID]))
			}
		}
	}
	return nil
}

// uniqueFieldSet maps unique field ids to their display names.
func uniqueFieldSet(ct *ContentType) map[string]string {
	out := make(map[string]string)
	for _, f := range ct.Fields {
		if f.Unique {
			out[f.ID] = f.DisplayName
		}
	}
	return out
}

// storeFailure classifies a store error. Known sentinels surface as
// BAD_REQUEST (conflict sentinels as CONFLICT), anything else as
// INTERNAL_SERVER_ERROR. The raw message rides in details; finalize strips
// it in production.
func (s *service) storeFailure(ctx context.Context, op string, err error) *Response {
	s.logger.ErrorContext(ctx, "entry store operation failed", "op", op, "error", err)
	switch {
	case errors.Is(err, ErrDuplicateSlug), errors.Is(err, ErrUniqueValueConflict):
		return Fail(CodeConflict, "Content entry conflicts with existing data", err.Error())
	case errors.Is(err, ErrStoreRejected):
		return Fail(CodeBadRequest, "Entry store rejected the operation", err.Error())
	default:
		return Fail(CodeInternalServerError, "An unexpected error occurred", err.Error())
	}
}
