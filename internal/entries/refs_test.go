package entries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrybase-dev/entrybase/internal/entries"
	"github.com/entrybase-dev/entrybase/internal/query"
)

func TestParseRefs(t *testing.T) {
	render := func(n query.Node) (string, []interface{}) {
		args := &query.Args{}
		return query.SQL(n, args), args.Values()
	}

	t.Run("bare slug", func(t *testing.T) {
		node, join := entries.ParseRefs([]string{"my-slug"})
		assert.False(t, join)

		sql, args := render(node)
		assert.Equal(t, `"entries"."slug" = $1`, sql)
		assert.Equal(t, []interface{}{"my-slug"}, args)
	})

	t.Run("section and slug", func(t *testing.T) {
		node, join := entries.ParseRefs([]string{"news/my-slug"})
		assert.True(t, join)

		sql, args := render(node)
		assert.Equal(t, `("sections"."handle" = $1 AND "entries"."slug" = $2)`, sql)
		assert.Equal(t, []interface{}{"news", "my-slug"}, args)
	})

	t.Run("mixed refs are disjoined", func(t *testing.T) {
		node, join := entries.ParseRefs([]string{"news/a", "b"})
		assert.True(t, join)

		sql, _ := render(node)
		assert.Equal(t,
			`(("sections"."handle" = $1 AND "entries"."slug" = $2) OR "entries"."slug" = $3)`,
			sql)
	})

	t.Run("extra segments are ignored", func(t *testing.T) {
		node, _ := entries.ParseRefs([]string{"news/a/ignored"})

		sql, args := render(node)
		assert.Equal(t, `("sections"."handle" = $1 AND "entries"."slug" = $2)`, sql)
		assert.Equal(t, []interface{}{"news", "a"}, args)
	})

	t.Run("empty segments are dropped", func(t *testing.T) {
		node, join := entries.ParseRefs([]string{"/my-slug", ""})
		assert.False(t, join)

		sql, _ := render(node)
		assert.Equal(t, `"entries"."slug" = $1`, sql)
	})
}
