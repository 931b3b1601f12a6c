package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQL(t *testing.T) {
	tests := []struct {
		name         string
		node         Node
		expectedSQL  string
		expectedArgs []interface{}
	}{
		{
			name:         "equality leaf",
			node:         Leaf{Column: "section_id", Op: OpEqual, Value: int64(3)},
			expectedSQL:  `"section_id" = $1`,
			expectedArgs: []interface{}{int64(3)},
		},
		{
			name:         "inequality leaf",
			node:         Leaf{Column: "status", Op: OpNotEqual, Value: "draft"},
			expectedSQL:  `"status" <> $1`,
			expectedArgs: []interface{}{"draft"},
		},
		{
			name:         "null equality",
			node:         Leaf{Column: "expiry_date", Op: OpEqual, Value: nil},
			expectedSQL:  `"expiry_date" IS NULL`,
			expectedArgs: nil,
		},
		{
			name:         "in set",
			node:         Leaf{Column: "section_id", Op: OpIn, Value: []int64{1, 2}},
			expectedSQL:  `"section_id" = ANY($1)`,
			expectedArgs: []interface{}{[]int64{1, 2}},
		},
		{
			name:         "not in set",
			node:         Leaf{Column: "section_id", Op: OpNotIn, Value: []int64{1, 2}},
			expectedSQL:  `NOT ("section_id" = ANY($1))`,
			expectedArgs: []interface{}{[]int64{1, 2}},
		},
		{
			name: "conjunction",
			node: And{Nodes: []Node{
				Leaf{Column: "post_date", Op: OpGreaterOrEqual, Value: "2020-01-01T00:00:00Z"},
				Leaf{Column: "post_date", Op: OpLessThan, Value: "2021-01-01T00:00:00Z"},
			}},
			expectedSQL:  `("post_date" >= $1 AND "post_date" < $2)`,
			expectedArgs: []interface{}{"2020-01-01T00:00:00Z", "2021-01-01T00:00:00Z"},
		},
		{
			name: "disjunction with negation",
			node: Or{Nodes: []Node{
				Leaf{Column: "section_id", Op: OpNotEqual, Value: int64(4)},
				Leaf{Column: "author_id", Op: OpEqual, Value: int64(9)},
			}},
			expectedSQL:  `("section_id" <> $1 OR "author_id" = $2)`,
			expectedArgs: []interface{}{int64(4), int64(9)},
		},
		{
			name:         "not wraps inner",
			node:         Not{Inner: Leaf{Column: "slug", Op: OpEqual, Value: "home"}},
			expectedSQL:  `NOT ("slug" = $1)`,
			expectedArgs: []interface{}{"home"},
		},
		{
			name:         "qualified column",
			node:         Leaf{Column: "sections.handle", Op: OpEqual, Value: "news"},
			expectedSQL:  `"sections"."handle" = $1`,
			expectedArgs: []interface{}{"news"},
		},
		{
			name:        "nil node",
			node:        nil,
			expectedSQL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &Args{}
			sql := SQL(tt.node, args)

			assert.Equal(t, tt.expectedSQL, sql)
			assert.Equal(t, tt.expectedArgs, args.Values())
		})
	}
}

func TestNewAnd(t *testing.T) {
	leaf := Leaf{Column: "a", Op: OpEqual, Value: 1}

	assert.Nil(t, NewAnd())
	assert.Nil(t, NewAnd(nil, nil))
	assert.Equal(t, Node(leaf), NewAnd(leaf))

	nested := NewAnd(leaf, And{Nodes: []Node{leaf, leaf}})
	assert.Equal(t, And{Nodes: []Node{leaf, leaf, leaf}}, nested)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"entries"`, QuoteIdentifier("entries"))
	assert.Equal(t, `"entries"."post_date"`, QuoteIdentifier("entries.post_date"))
	assert.Equal(t, `"we""ird"`, QuoteIdentifier(`we"ird`))
}
