package strata_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-cms/strata/pkg/strata"
)

// productType returns the content type fixture shared by the normalizer and
// orchestrator tests.
func productType() *strata.ContentType {
	return &strata.ContentType{
		ID:          uuid.MustParse("7d9d631f-2c27-4204-bd3b-b706e8476cbb"),
		Slug:        "product",
		DisplayName: "Product",
		Fields: []strata.ContentField{
			{
				ID: "name", Name: "name", DisplayName: "Name",
				Type: strata.FieldTypeText, Required: true,
				Validation: &strata.FieldConstraints{MinLength: intPtr(2), MaxLength: intPtr(80)},
				Order:      0,
			},
			{
				ID: "price", Name: "price", DisplayName: "Price",
				Type: strata.FieldTypeNumber, Required: true,
				Validation: &strata.FieldConstraints{Min: floatPtr(0)},
				Order:      1,
			},
			{
				ID: "contact", Name: "contact", DisplayName: "Contact Email",
				Type: strata.FieldTypeEmail, Order: 2,
			},
			{
				ID: "sku", Name: "sku", DisplayName: "SKU",
				Type: strata.FieldTypeText, Unique: true,
				Validation: &strata.FieldConstraints{Pattern: "^[A-Z]{3}-[0-9]{4}$"},
				Order:      3,
			},
			{
				ID: "meta", Name: "meta", DisplayName: "Metadata",
				Type: strata.FieldTypeJSON, Order: 4,
			},
			{
				ID: "launched", Name: "launched", DisplayName: "Launched",
				Type: strata.FieldTypeBoolean, Order: 5,
			},
		},
	}
}

func TestNormalizeEntryValuesCoercion(t *testing.T) {
	ct := productType()
	raw := []strata.RawFieldValue{
		{FieldID: "name", Value: "Widget"},
		{FieldID: "price", Value: 19.99},
		{FieldID: "launched", Value: true},
		{FieldID: "meta", Value: map[string]any{"tags": []any{"new"}}},
		{FieldID: "contact", Value: nil},
	}

	values, errs := strata.NormalizeEntryValues(ct, raw, strata.NormalizeOptions{RequireAllFields: true})
	require.Empty(t, errs)
	require.Equal(t, []strata.FieldValue{
		{FieldID: "name", Value: "Widget"},
		{FieldID: "price", Value: "19.99"},
		{FieldID: "launched", Value: "true"},
		{FieldID: "meta", Value: `{"tags":["new"]}`},
		{FieldID: "contact", Value: ""},
	}, values)
}

func TestNormalizeEntryValuesNumberRendering(t *testing.T) {
	ct := productType()
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "large float stays plain", value: 1234567890123.0, want: "1234567890123"},
		{name: "fraction keeps digits", value: 0.5, want: "0.5"},
		{name: "json.Number keeps raw text", value: json.Number("123.450"), want: "123.450"},
		{name: "zero", value: 0.0, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, errs := strata.NormalizeEntryValues(ct,
				[]strata.RawFieldValue{{FieldID: "price", Value: tt.value}},
				strata.NormalizeOptions{})
			require.Empty(t, errs)
			require.Len(t, values, 1)
			assert.Equal(t, tt.want, values[0].Value)
		})
	}
}

func TestNormalizeEntryValuesErrors(t *testing.T) {
	ct := productType()

	t.Run("missing fieldId", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct,
			[]strata.RawFieldValue{{Value: "orphan"}}, strata.NormalizeOptions{})
		assert.Nil(t, values)
		assert.Equal(t, []string{"Field value entry is missing a fieldId"}, errs)
	})

	t.Run("unknown field", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct,
			[]strata.RawFieldValue{{FieldID: "colour", Value: "red"}}, strata.NormalizeOptions{})
		assert.Nil(t, values)
		assert.Equal(t, []string{"Unknown field 'colour' for content type 'product'"}, errs)
	})

	t.Run("constraint violations carry display names", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct, []strata.RawFieldValue{
			{FieldID: "price", Value: -5},
			{FieldID: "contact", Value: "not-an-email"},
			{FieldID: "sku", Value: "abc"},
		}, strata.NormalizeOptions{})
		assert.Nil(t, values)
		assert.Equal(t, []string{
			"Field 'Price': Must be at least 0",
			"Field 'Contact Email': Please enter a valid email address",
			"Field 'SKU': Value does not match the required format",
		}, errs)
	})

	t.Run("valid pairs are dropped when any error is recorded", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct, []strata.RawFieldValue{
			{FieldID: "name", Value: "Widget"},
			{FieldID: "colour", Value: "red"},
		}, strata.NormalizeOptions{})
		assert.Nil(t, values)
		assert.Len(t, errs, 1)
	})
}

func TestNormalizeEntryValuesRequiredCoverage(t *testing.T) {
	ct := productType()

	t.Run("missing required fields are reported in schema order", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct, nil,
			strata.NormalizeOptions{RequireAllFields: true})
		assert.Nil(t, values)
		assert.Equal(t, []string{
			"Field 'Name' is required",
			"Field 'Price' is required",
		}, errs)
	})

	t.Run("supplied errors come before coverage errors", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct,
			[]strata.RawFieldValue{{FieldID: "contact", Value: "nope"}},
			strata.NormalizeOptions{RequireAllFields: true})
		assert.Nil(t, values)
		assert.Equal(t, []string{
			"Field 'Contact Email': Please enter a valid email address",
			"Field 'Name' is required",
			"Field 'Price' is required",
		}, errs)
	})

	t.Run("empty required value collapses with duplicate", func(t *testing.T) {
		// Two empty submissions for the same field produce one message, and
		// the coverage pass does not add a second copy.
		values, errs := strata.NormalizeEntryValues(ct, []strata.RawFieldValue{
			{FieldID: "name", Value: ""},
			{FieldID: "name", Value: nil},
			{FieldID: "price", Value: 10},
		}, strata.NormalizeOptions{RequireAllFields: true})
		assert.Nil(t, values)
		assert.Equal(t, []string{"Field 'Name' is required"}, errs)
	})

	t.Run("coverage is skipped without RequireAllFields", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValues(ct,
			[]strata.RawFieldValue{{FieldID: "contact", Value: "user@example.com"}},
			strata.NormalizeOptions{})
		require.Empty(t, errs)
		assert.Equal(t, []strata.FieldValue{{FieldID: "contact", Value: "user@example.com"}}, values)
	})
}

func TestNormalizeEntryValuesIdempotent(t *testing.T) {
	ct := productType()
	first, errs := strata.NormalizeEntryValues(ct, []strata.RawFieldValue{
		{FieldID: "name", Value: "Widget"},
		{FieldID: "price", Value: 19.99},
		{FieldID: "launched", Value: false},
	}, strata.NormalizeOptions{RequireAllFields: false})
	require.Empty(t, errs)

	raw := make([]strata.RawFieldValue, len(first))
	for i, fv := range first {
		raw[i] = strata.RawFieldValue{FieldID: fv.FieldID, Value: fv.Value}
	}
	second, errs := strata.NormalizeEntryValues(ct, raw, strata.NormalizeOptions{})
	require.Empty(t, errs)
	assert.Equal(t, first, second)
}

func TestNormalizeEntryValuesJSON(t *testing.T) {
	ct := productType()
	shapeMsg := "fieldValues must be an array of {fieldId, value} objects"

	t.Run("valid payload", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValuesJSON(ct,
			json.RawMessage(`[{"fieldId":"name","value":"Widget"},{"fieldId":"price","value":3}]`),
			strata.NormalizeOptions{RequireAllFields: true})
		require.Empty(t, errs)
		assert.Equal(t, []strata.FieldValue{
			{FieldID: "name", Value: "Widget"},
			{FieldID: "price", Value: "3"},
		}, values)
	})

	t.Run("empty array reports coverage only", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValuesJSON(ct, json.RawMessage(`[]`),
			strata.NormalizeOptions{RequireAllFields: true})
		assert.Nil(t, values)
		assert.Equal(t, []string{
			"Field 'Name' is required",
			"Field 'Price' is required",
		}, errs)
	})

	for name, raw := range map[string]json.RawMessage{
		"absent":    nil,
		"null":      json.RawMessage(`null`),
		"object":    json.RawMessage(`{"fieldId":"name"}`),
		"bad json":  json.RawMessage(`[{"fieldId":`),
		"non-array": json.RawMessage(`"name=Widget"`),
	} {
		t.Run(name+" payload reports shape and coverage", func(t *testing.T) {
			values, errs := strata.NormalizeEntryValuesJSON(ct, raw,
				strata.NormalizeOptions{RequireAllFields: true})
			assert.Nil(t, values)
			assert.Equal(t, []string{
				shapeMsg,
				"Field 'Name' is required",
				"Field 'Price' is required",
			}, errs)
		})
	}

	t.Run("shape error without coverage", func(t *testing.T) {
		values, errs := strata.NormalizeEntryValuesJSON(ct, nil, strata.NormalizeOptions{})
		assert.Nil(t, values)
		assert.Equal(t, []string{shapeMsg}, errs)
	})
}
