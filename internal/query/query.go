// Package query provides the predicate core shared by the entries and API
// packages: typed comparisons, a composable AND/OR/NOT predicate tree, and a
// compiler that turns a tree into a parameterized SQL fragment.
package query

// Op represents comparison operators
type Op string

const (
	OpEqual          Op = "eq"
	OpNotEqual       Op = "neq"
	OpGreaterThan    Op = "gt"
	OpGreaterOrEqual Op = "gte"
	OpLessThan       Op = "lt"
	OpLessOrEqual    Op = "lte"
	OpIn             Op = "in"
	OpNotIn          Op = "nin"
)

// Cmp is a tagged comparison value. Filter fields accept Cmp values anywhere
// they accept scalars, which avoids encoding the operator into the value
// string.
type Cmp struct {
	Op    Op
	Value interface{}
}

// Eq builds an equality comparison.
func Eq(v interface{}) Cmp { return Cmp{Op: OpEqual, Value: v} }

// Neq builds an inequality comparison.
func Neq(v interface{}) Cmp { return Cmp{Op: OpNotEqual, Value: v} }

// Gt builds a greater-than comparison.
func Gt(v interface{}) Cmp { return Cmp{Op: OpGreaterThan, Value: v} }

// Gte builds a greater-or-equal comparison.
func Gte(v interface{}) Cmp { return Cmp{Op: OpGreaterOrEqual, Value: v} }

// Lt builds a less-than comparison.
func Lt(v interface{}) Cmp { return Cmp{Op: OpLessThan, Value: v} }

// Lte builds a less-or-equal comparison.
func Lte(v interface{}) Cmp { return Cmp{Op: OpLessOrEqual, Value: v} }

// Node is a node in a predicate tree. Only Leaf, And, Or and Not implement
// it, so compilers can type-switch exhaustively.
type Node interface {
	node()
}

// Leaf is a single comparison against a column. For OpIn and OpNotIn the
// value holds the full candidate set.
type Leaf struct {
	Column string
	Op     Op
	Value  interface{}
}

// And combines child predicates conjunctively.
type And struct {
	Nodes []Node
}

// Or combines child predicates disjunctively.
type Or struct {
	Nodes []Node
}

// Not negates its inner predicate.
type Not struct {
	Inner Node
}

func (Leaf) node() {}
func (And) node()  {}
func (Or) node()   {}
func (Not) node()  {}

// NewAnd builds a conjunction, flattening nested And nodes and dropping nils.
// Returns nil for an empty set and the child itself for a single one.
func NewAnd(nodes ...Node) Node {
	flat := flatten(nodes, true)
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return And{Nodes: flat}
}

// NewOr builds a disjunction with the same normalization as NewAnd.
func NewOr(nodes ...Node) Node {
	flat := flatten(nodes, false)
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return Or{Nodes: flat}
}

func flatten(nodes []Node, conjunctive bool) []Node {
	var flat []Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if conjunctive {
			if inner, ok := n.(And); ok {
				flat = append(flat, inner.Nodes...)
				continue
			}
		} else {
			if inner, ok := n.(Or); ok {
				flat = append(flat, inner.Nodes...)
				continue
			}
		}
		flat = append(flat, n)
	}
	return flat
}
