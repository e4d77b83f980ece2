package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-cms/strata/pkg/strata"
	"github.com/strata-cms/strata/pkg/strata/registry/memory"
)

func blogType() strata.ContentType {
	return strata.ContentType{
		Slug:        "blog",
		DisplayName: "Blog Post",
		Fields: []strata.ContentField{
			{ID: "title", Name: "title", DisplayName: "Title", Type: strata.FieldTypeText, Required: true,
				Validation: &strata.FieldConstraints{Pattern: "^.{1,120}$"}},
		},
	}
}

func TestMemoryRegistry_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignsIDAndTimestamps", func(t *testing.T) {
		reg := memory.New()
		require.NoError(t, reg.Register(blogType()))

		types, err := reg.ListTypes(ctx)
		require.NoError(t, err)
		require.Len(t, types, 1)
		assert.NotEqual(t, uuid.Nil, types[0].ID)
		assert.False(t, types[0].CreatedAt.IsZero())
		assert.False(t, types[0].UpdatedAt.IsZero())
	})

	t.Run("KeepsExplicitID", func(t *testing.T) {
		reg := memory.New()
		ct := blogType()
		ct.ID = uuid.MustParse("91f00000-0000-4000-8000-000000000001")
		require.NoError(t, reg.Register(ct))

		types, _ := reg.ListTypes(ctx)
		assert.Equal(t, ct.ID, types[0].ID)
	})

	t.Run("RejectsInvalidDefinitions", func(t *testing.T) {
		reg := memory.New()
		ct := blogType()
		ct.Slug = "Not A Slug"
		err := reg.Register(ct)
		assert.ErrorIs(t, err, strata.ErrInvalidContentType)

		ct = blogType()
		ct.DisplayName = ""
		assert.ErrorIs(t, reg.Register(ct), strata.ErrInvalidContentType)

		ct = blogType()
		ct.Fields = append(ct.Fields, ct.Fields[0])
		assert.ErrorIs(t, reg.Register(ct), strata.ErrInvalidContentType)
	})

	t.Run("ReRegisterKeepsCreatedAt", func(t *testing.T) {
		reg := memory.New()
		require.NoError(t, reg.Register(blogType()))
		types, _ := reg.ListTypes(ctx)
		created := types[0].CreatedAt

		replacement := blogType()
		replacement.DisplayName = "Blog Article"
		require.NoError(t, reg.Register(replacement))

		types, _ = reg.ListTypes(ctx)
		require.Len(t, types, 1)
		assert.Equal(t, "Blog Article", types[0].DisplayName)
		assert.Equal(t, created, types[0].CreatedAt)
	})

	t.Run("RejectsSameIDUnderAnotherSlug", func(t *testing.T) {
		reg := memory.New()
		ct := blogType()
		ct.ID = uuid.New()
		require.NoError(t, reg.Register(ct))

		other := blogType()
		other.ID = ct.ID
		other.Slug = "news"
		err := reg.Register(other)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestMemoryRegistry_ListTypes(t *testing.T) {
	reg := memory.New()
	ctx := context.Background()

	for _, slug := range []string{"zebra", "alpha", "mango"} {
		ct := blogType()
		ct.Slug = slug
		require.NoError(t, reg.Register(ct))
	}

	t.Run("SortedBySlug", func(t *testing.T) {
		types, err := reg.ListTypes(ctx)
		require.NoError(t, err)
		slugs := make([]string, len(types))
		for i, ct := range types {
			slugs[i] = ct.Slug
		}
		assert.Equal(t, []string{"alpha", "mango", "zebra"}, slugs)
	})

	t.Run("ReturnsDeepCopies", func(t *testing.T) {
		types, err := reg.ListTypes(ctx)
		require.NoError(t, err)
		types[0].Fields[0].DisplayName = "Hacked"
		types[0].Fields[0].Validation.Pattern = "broken"

		fresh, err := reg.ListTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Title", fresh[0].Fields[0].DisplayName)
		assert.Equal(t, "^.{1,120}$", fresh[0].Fields[0].Validation.Pattern)
	})
}

func TestMemoryRegistry_Remove(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Register(blogType()))

	reg.Remove("blog")
	types, err := reg.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, types)

	// Removing an unknown slug is a no-op.
	reg.Remove("blog")
}
