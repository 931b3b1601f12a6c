package entries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrybase-dev/entrybase/internal/entries"
	"github.com/entrybase-dev/entrybase/internal/query"
	"github.com/entrybase-dev/entrybase/internal/testutil"
)

func testDeps(lookup *testutil.MockLookup) entries.PrepareDeps {
	return entries.PrepareDeps{
		Lookup:   lookup,
		Registry: &testutil.MockRegistry{},
		Caps:     entries.Capabilities{AuthorFiltering: true},
	}
}

func TestPrepare_EmptyCriteria(t *testing.T) {
	lookup := &testutil.MockLookup{}

	pq, err := entries.NewCriteria().Prepare(context.Background(), testDeps(lookup))

	require.NoError(t, err)
	assert.False(t, pq.Empty)
	assert.Nil(t, pq.Predicate)
	assert.Empty(t, lookup.ColumnQueries)

	sql, args := pq.SQL()
	assert.Equal(t,
		`SELECT "entries"."id", "entries"."section_id", "entries"."type_id", "entries"."author_id", `+
			`"entries"."slug", "entries"."title", "entries"."status", "entries"."post_date", "entries"."expiry_date"`+
			` FROM "entries" ORDER BY "entries"."post_date" DESC`,
		sql)
	assert.Empty(t, args)
}

func TestPrepare_UnresolvableHandleShortCircuits(t *testing.T) {
	lookup := &testutil.MockLookup{ColumnResult: nil} // zero matches

	c := entries.NewCriteria().
		Section("no-such-section").
		Slug("my-slug")
	pq, err := c.Prepare(context.Background(), testDeps(lookup))

	require.NoError(t, err)
	assert.True(t, pq.Empty)
	// No predicate is constructed for a provably empty query.
	assert.Nil(t, pq.Predicate)
	assert.Len(t, lookup.ColumnQueries, 1)
}

func TestPrepare_HandleResolution(t *testing.T) {
	lookup := &testutil.MockLookup{ColumnResult: []int64{3}, ScalarMiss: true}

	pq, err := entries.NewCriteria().
		Section("news").
		Prepare(context.Background(), testDeps(lookup))

	require.NoError(t, err)
	require.Len(t, lookup.ColumnQueries, 1)
	assert.Equal(t, `SELECT id FROM "sections" WHERE "handle" = $1`, lookup.ColumnQueries[0])

	sql, args := pq.SQL()
	assert.Contains(t, sql, `"entries"."section_id" = $1`)
	assert.Equal(t, []interface{}{int64(3)}, args)
}

func TestPrepare_SingleValueEquality(t *testing.T) {
	lookup := &testutil.MockLookup{}

	pq, err := entries.NewCriteria().
		Slug("my-slug").
		Prepare(context.Background(), testDeps(lookup))

	require.NoError(t, err)
	sql, args := pq.SQL()
	assert.Contains(t, sql, `"entries"."slug" = $1`)
	assert.Equal(t, []interface{}{"my-slug"}, args)
}

func TestPrepare_DateRange(t *testing.T) {
	lookup := &testutil.MockLookup{}

	pq, err := entries.NewCriteria().
		PostDate([]string{">=2020-01-01", "<2021-01-01"}).
		Prepare(context.Background(), testDeps(lookup))

	require.NoError(t, err)
	sql, args := pq.SQL()
	assert.Contains(t, sql, `("entries"."post_date" >= $1 AND "entries"."post_date" < $2)`)
	assert.Equal(t, []interface{}{"2020-01-01T00:00:00Z", "2021-01-01T00:00:00Z"}, args)
}

func TestPrepare_BeforeAfterComposeInAnyOrder(t *testing.T) {
	until := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	build := func(c *entries.Criteria) (string, []interface{}) {
		pq, err := c.Prepare(context.Background(), testDeps(&testutil.MockLookup{}))
		require.NoError(t, err)
		return pq.SQL()
	}

	sqlA, argsA := build(entries.NewCriteria().Before(until).After(from))
	sqlB, argsB := build(entries.NewCriteria().After(from).Before(until))

	assert.Contains(t, sqlA, `"entries"."post_date" < $1`)
	assert.Contains(t, sqlA, `"entries"."post_date" >= $2`)
	assert.ElementsMatch(t, argsA, argsB)
	assert.Contains(t, sqlB, `"entries"."post_date" >= $1`)
	assert.Contains(t, sqlB, `"entries"."post_date" < $2`)
}

func TestPrepare_Refs(t *testing.T) {
	t.Run("section and slug requires join", func(t *testing.T) {
		pq, err := entries.NewCriteria().
			Ref("news/my-slug").
			Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

		require.NoError(t, err)
		require.Len(t, pq.Joins, 1)
		assert.Equal(t, "sections", pq.Joins[0].Table)

		sql, args := pq.SQL()
		assert.Contains(t, sql, `INNER JOIN "sections" ON sections.id = entries.section_id`)
		assert.Contains(t, sql, `("sections"."handle" = $1 AND "entries"."slug" = $2)`)
		assert.Equal(t, []interface{}{"news", "my-slug"}, args)
	})

	t.Run("bare slug needs no join", func(t *testing.T) {
		pq, err := entries.NewCriteria().
			Ref("my-slug").
			Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

		require.NoError(t, err)
		assert.Empty(t, pq.Joins)

		sql, args := pq.SQL()
		assert.Contains(t, sql, `"entries"."slug" = $1`)
		assert.Equal(t, []interface{}{"my-slug"}, args)
	})

	t.Run("join added once for many refs", func(t *testing.T) {
		pq, err := entries.NewCriteria().
			Ref("news/a", "blog/b").
			Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

		require.NoError(t, err)
		assert.Len(t, pq.Joins, 1)
	})
}

func TestPrepare_EditableWithoutIdentity(t *testing.T) {
	pq, err := entries.NewCriteria().
		Editable(true).
		Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

	require.NoError(t, err)
	assert.True(t, pq.Empty)
}

func TestPrepare_EditablePeerScoping(t *testing.T) {
	deps := testDeps(&testutil.MockLookup{})
	deps.Identity = &testutil.MockIdentity{
		UserID: 9,
		Grants: map[string]bool{
			"editPeerEntries:section:5": true,
		},
	}
	deps.Registry = &testutil.MockRegistry{
		Sections: []*entries.Section{
			{ID: 4, Handle: "reviews", Type: entries.SectionTypeChannel},
			{ID: 5, Handle: "news", Type: entries.SectionTypeChannel},
			{ID: 6, Handle: "homepage", Type: entries.SectionTypeSingle},
		},
	}

	pq, err := entries.NewCriteria().
		Editable(true).
		Prepare(context.Background(), deps)

	require.NoError(t, err)
	sql, args := pq.SQL()

	// Restricted to editable sections.
	assert.Contains(t, sql, `"entries"."section_id" = ANY($1)`)
	assert.Equal(t, []int64{4, 5, 6}, args[0])

	// Section 4 lacks peer-edit rights: authorship restriction applies.
	assert.Contains(t, sql, `("entries"."section_id" <> $2 OR "entries"."author_id" = $3)`)
	assert.Equal(t, int64(4), args[1])
	assert.Equal(t, int64(9), args[2])

	// Sections 5 (peer rights granted) and 6 (single) get no authorship
	// restriction.
	assert.Len(t, args, 3)
}

func TestPrepare_AuthorFilteringCapability(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		lookup := &testutil.MockLookup{ColumnResult: []int64{2}}
		pq, err := entries.NewCriteria().
			AuthorID(int64(7)).
			AuthorGroup("editors").
			Prepare(context.Background(), testDeps(lookup))

		require.NoError(t, err)
		sql, _ := pq.SQL()
		assert.Contains(t, sql, `"entries"."author_id" = $1`)
		assert.Contains(t, sql, `INNER JOIN "user_group_members"`)
		assert.Contains(t, sql, `"user_group_members"."group_id" = $2`)
	})

	t.Run("disabled", func(t *testing.T) {
		lookup := &testutil.MockLookup{ColumnResult: []int64{2}}
		deps := testDeps(lookup)
		deps.Caps.AuthorFiltering = false

		pq, err := entries.NewCriteria().
			AuthorID(int64(7)).
			AuthorGroup("editors").
			Prepare(context.Background(), deps)

		require.NoError(t, err)
		sql, args := pq.SQL()
		assert.NotContains(t, sql, "author_id")
		assert.NotContains(t, sql, "user_group_members")
		assert.Empty(t, args)
	})
}

func TestPrepare_StructureDerivation(t *testing.T) {
	t.Run("single section id derives structure once", func(t *testing.T) {
		lookup := &testutil.MockLookup{ScalarResult: 11}

		pq, err := entries.NewCriteria().
			Section(int64(7)).
			Prepare(context.Background(), testDeps(lookup))

		require.NoError(t, err)
		require.Len(t, lookup.ScalarQueries, 1)
		assert.Contains(t, lookup.ScalarQueries[0], "structure_id")

		// A structure context suppresses the default post-date ordering.
		assert.Empty(t, pq.Order)
	})

	t.Run("multiple section ids skip derivation", func(t *testing.T) {
		lookup := &testutil.MockLookup{}

		_, err := entries.NewCriteria().
			Section([]int64{7, 8}).
			Prepare(context.Background(), testDeps(lookup))

		require.NoError(t, err)
		assert.Empty(t, lookup.ScalarQueries)
	})

	t.Run("explicit structure id wins", func(t *testing.T) {
		lookup := &testutil.MockLookup{}

		_, err := entries.NewCriteria().
			Section(int64(7)).
			StructureID(3).
			Prepare(context.Background(), testDeps(lookup))

		require.NoError(t, err)
		assert.Empty(t, lookup.ScalarQueries)
	})

	t.Run("section without structure keeps default order", func(t *testing.T) {
		lookup := &testutil.MockLookup{ScalarMiss: true}

		pq, err := entries.NewCriteria().
			Section(int64(7)).
			Prepare(context.Background(), testDeps(lookup))

		require.NoError(t, err)
		assert.Equal(t, []entries.OrderBy{{Column: "entries.post_date", Desc: true}}, pq.Order)
	})
}

func TestPrepare_CalledTwice(t *testing.T) {
	c := entries.NewCriteria()
	_, err := c.Prepare(context.Background(), testDeps(&testutil.MockLookup{}))
	require.NoError(t, err)

	_, err = c.Prepare(context.Background(), testDeps(&testutil.MockLookup{}))
	assert.ErrorIs(t, err, entries.ErrAlreadyPrepared)
}

func TestPrepare_MalformedPredicate(t *testing.T) {
	_, err := entries.NewCriteria().
		Slug("~=my-slug").
		Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

	var malformed *query.MalformedPredicateError
	require.ErrorAs(t, err, &malformed)
}

func TestPrepare_Hook(t *testing.T) {
	t.Run("hook can abort into empty state", func(t *testing.T) {
		deps := testDeps(&testutil.MockLookup{})
		deps.Hook = func(ctx context.Context, pq *entries.PreparedQuery) error {
			return entries.ErrUnsatisfiable
		}

		pq, err := entries.NewCriteria().Prepare(context.Background(), deps)

		require.NoError(t, err)
		assert.True(t, pq.Empty)
	})

	t.Run("hook errors propagate", func(t *testing.T) {
		deps := testDeps(&testutil.MockLookup{})
		deps.Hook = func(ctx context.Context, pq *entries.PreparedQuery) error {
			return assert.AnError
		}

		_, err := entries.NewCriteria().Prepare(context.Background(), deps)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestPrepare_ExplicitOrderAndPagination(t *testing.T) {
	pq, err := entries.NewCriteria().
		OrderBy(entries.OrderBy{Column: "entries.title"}).
		Limit(25).
		Offset(50).
		Prepare(context.Background(), testDeps(&testutil.MockLookup{}))

	require.NoError(t, err)
	sql, _ := pq.SQL()
	assert.Contains(t, sql, `ORDER BY "entries"."title" ASC`)
	assert.Contains(t, sql, "LIMIT 25")
	assert.Contains(t, sql, "OFFSET 50")
}

func TestPreparedQuery_CountSQL(t *testing.T) {
	pq, err := entries.NewCriteria().
		Slug("my-slug").
		Limit(10).
		Prepare(context.Background(), testDeps(&testutil.MockLookup{}))
	require.NoError(t, err)

	sql, args := pq.CountSQL()
	assert.Equal(t, `SELECT COUNT(*) FROM "entries" WHERE "entries"."slug" = $1`, sql)
	assert.Equal(t, []interface{}{"my-slug"}, args)
}
