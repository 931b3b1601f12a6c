package entries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrybase-dev/entrybase/internal/entries"
	"github.com/entrybase-dev/entrybase/internal/query"
	"github.com/entrybase-dev/entrybase/internal/testutil"
)

func TestResolveIDs_PassThrough(t *testing.T) {
	lookup := &testutil.MockLookup{}
	resolver := entries.NewHandleResolver(lookup, nil)

	tests := []struct {
		name  string
		value interface{}
		want  []int64
	}{
		{name: "int", value: 7, want: []int64{7}},
		{name: "int64", value: int64(7), want: []int64{7}},
		{name: "int slice", value: []int{1, 2}, want: []int64{1, 2}},
		{name: "int64 slice", value: []int64{3, 4}, want: []int64{3, 4}},
		{name: "resolved record", value: &entries.Section{ID: 5, Handle: "news"}, want: []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := resolver.ResolveIDs(context.Background(), "sections", tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.IDs())
		})
	}

	// Numeric inputs never hit the database.
	assert.Empty(t, lookup.ColumnQueries)
}

func TestResolveIDs_Unset(t *testing.T) {
	lookup := &testutil.MockLookup{}
	resolver := entries.NewHandleResolver(lookup, nil)

	f, err := resolver.ResolveIDs(context.Background(), "sections", nil)

	require.NoError(t, err)
	assert.True(t, f.IsUnset())
	assert.Empty(t, lookup.ColumnQueries)
}

func TestResolveIDs_HandleLookup(t *testing.T) {
	t.Run("single handle", func(t *testing.T) {
		lookup := &testutil.MockLookup{ColumnResult: []int64{12}}
		resolver := entries.NewHandleResolver(lookup, nil)

		f, err := resolver.ResolveIDs(context.Background(), "entry_types", "article")

		require.NoError(t, err)
		assert.Equal(t, []int64{12}, f.IDs())
		require.Len(t, lookup.ColumnQueries, 1)
		assert.Equal(t, `SELECT id FROM "entry_types" WHERE "handle" = $1`, lookup.ColumnQueries[0])
	})

	t.Run("handle set", func(t *testing.T) {
		lookup := &testutil.MockLookup{ColumnResult: []int64{1, 2}}
		resolver := entries.NewHandleResolver(lookup, nil)

		f, err := resolver.ResolveIDs(context.Background(), "sections", []string{"news", "blog"})

		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, f.IDs())
		require.Len(t, lookup.ColumnQueries, 1)
		assert.Equal(t, `SELECT id FROM "sections" WHERE "handle" = ANY($1)`, lookup.ColumnQueries[0])
	})

	t.Run("negated handle set", func(t *testing.T) {
		lookup := &testutil.MockLookup{ColumnResult: []int64{3}}
		resolver := entries.NewHandleResolver(lookup, nil)

		_, err := resolver.ResolveIDs(context.Background(), "sections", []string{"not", "news"})

		require.NoError(t, err)
		require.Len(t, lookup.ColumnQueries, 1)
		assert.Equal(t, `SELECT id FROM "sections" WHERE "handle" <> $1`, lookup.ColumnQueries[0])
	})
}

func TestResolveIDs_NoMatches(t *testing.T) {
	lookup := &testutil.MockLookup{ColumnResult: nil}
	resolver := entries.NewHandleResolver(lookup, nil)

	f, err := resolver.ResolveIDs(context.Background(), "sections", "no-such-handle")

	require.NoError(t, err)
	assert.True(t, f.IsImpossible())
	assert.False(t, f.IsUnset())
	assert.Empty(t, f.IDs())
}

func TestResolveIDs_LookupError(t *testing.T) {
	lookup := &testutil.MockLookup{
		OnColumn: func(ctx context.Context, sql string, args ...interface{}) ([]int64, error) {
			return nil, assert.AnError
		},
	}
	resolver := entries.NewHandleResolver(lookup, nil)

	_, err := resolver.ResolveIDs(context.Background(), "sections", "news")

	assert.ErrorIs(t, err, assert.AnError)
}

func TestResolveIDs_MalformedHandle(t *testing.T) {
	resolver := entries.NewHandleResolver(&testutil.MockLookup{}, nil)

	_, err := resolver.ResolveIDs(context.Background(), "sections", "~=news")

	var malformed *query.MalformedPredicateError
	assert.ErrorAs(t, err, &malformed)
}
