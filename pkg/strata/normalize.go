package strata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RawFieldValue is one loosely-typed (fieldId, value) pair as supplied by a
// client. Value may be any JSON scalar, object or array; normalization
// coerces it to a string.
type RawFieldValue struct {
	FieldID string `json:"fieldId"`
	Value   any    `json:"value"`
}

// NormalizeOptions controls normalization strictness.
type NormalizeOptions struct {
	// RequireAllFields demands a non-empty value for every required field of
	// the content type, not only the supplied ones.
	RequireAllFields bool
}

// NormalizeEntryValues turns raw client field values into the canonical
// storage form for the given content type. Values come back in supplied
// order. When any error is recorded the values are nil, signaling callers
// that the write must not proceed; all applicable errors accumulate rather
// than short-circuiting.
func NormalizeEntryValues(ct *ContentType, raw []RawFieldValue, opts NormalizeOptions) ([]FieldValue, []string) {
	errs := newErrorSet()
	supplied := make(map[string]struct{}, len(raw))
	values := make([]FieldValue, 0, len(raw))

	for _, rv := range raw {
		if rv.FieldID == "" {
			errs.add("Field value entry is missing a fieldId")
			continue
		}
		field := ct.FieldByID(rv.FieldID)
		if field == nil {
			errs.add(fmt.Sprintf("Unknown field '%s' for content type '%s'", rv.FieldID, ct.Slug))
			continue
		}
		value := coerceValue(rv.Value)
		if res := ValidateField(field.Type, value, field.Options()); !res.Valid {
			errs.add(fieldErrorMessage(field, res.Message))
		}
		supplied[field.ID] = struct{}{}
		values = append(values, FieldValue{FieldID: field.ID, Value: value})
	}

	if opts.RequireAllFields {
		for i := range ct.Fields {
			field := &ct.Fields[i]
			if !field.Required {
				continue
			}
			if _, ok := supplied[field.ID]; ok {
				continue
			}
			errs.add(fmt.Sprintf("Field '%s' is required", field.DisplayName))
		}
	}

	if list := errs.list(); len(list) > 0 {
		return nil, list
	}
	return values, nil
}

// NormalizeEntryValuesJSON decodes a raw JSON fieldValues payload and
// normalizes it. A payload that is absent, null, or not a JSON array is
// reported as a shape error without suppressing the required-field checks.
func NormalizeEntryValuesJSON(ct *ContentType, raw json.RawMessage, opts NormalizeOptions) ([]FieldValue, []string) {
	trimmed := bytes.TrimSpace(raw)
	var rvs []RawFieldValue
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || json.Unmarshal(trimmed, &rvs) != nil {
		errs := newErrorSet()
		errs.add("fieldValues must be an array of {fieldId, value} objects")
		if opts.RequireAllFields {
			for i := range ct.Fields {
				if ct.Fields[i].Required {
					errs.add(fmt.Sprintf("Field '%s' is required", ct.Fields[i].DisplayName))
				}
			}
		}
		return nil, errs.list()
	}
	return NormalizeEntryValues(ct, rvs, opts)
}

// fieldErrorMessage renders a validator message against the field's display
// name. The required message takes the same shape as the coverage error in
// NormalizeEntryValues so the two collapse into one during de-duplication.
func fieldErrorMessage(field *ContentField, msg string) string {
	if msg == RequiredFieldMessage {
		return fmt.Sprintf("Field '%s' is required", field.DisplayName)
	}
	return fmt.Sprintf("Field '%s': %s", field.DisplayName, msg)
}

// coerceValue stringifies a loosely-typed JSON value. Numbers render without
// exponent notation, booleans as true/false, nil as the empty string, and
// composite values as compact JSON.
func coerceValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// errorSet accumulates error strings, de-duplicating while preserving the
// order of first occurrence.
type errorSet struct {
	seen map[string]struct{}
	out  []string
}

func newErrorSet() *errorSet {
	return &errorSet{seen: make(map[string]struct{})}
}

func (s *errorSet) add(msg string) {
	if _, dup := s.seen[msg]; dup {
		return
	}
	s.seen[msg] = struct{}{}
	s.out = append(s.out, msg)
}

func (s *errorSet) list() []string { return s.out }
