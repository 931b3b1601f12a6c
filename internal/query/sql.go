package query

import (
	"fmt"
	"strings"
)

// Args accumulates positional query arguments while a predicate tree is
// compiled. Placeholders are numbered from $1 in compile order.
type Args struct {
	vals []interface{}
}

// Add appends a value and returns its placeholder.
func (a *Args) Add(v interface{}) string {
	a.vals = append(a.vals, v)
	return fmt.Sprintf("$%d", len(a.vals))
}

// Values returns the accumulated arguments in placeholder order.
func (a *Args) Values() []interface{} {
	return a.vals
}

// QuoteIdentifier safely quotes a PostgreSQL identifier to prevent SQL
// injection. Dotted names are quoted per segment.
func QuoteIdentifier(identifier string) string {
	parts := strings.Split(identifier, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// SQL compiles a predicate tree into a SQL condition, appending arguments to
// args. A nil node compiles to the empty string.
func SQL(n Node, args *Args) string {
	switch node := n.(type) {
	case nil:
		return ""
	case Leaf:
		return leafSQL(node, args)
	case And:
		return joinChildren(node.Nodes, " AND ", args)
	case Or:
		return joinChildren(node.Nodes, " OR ", args)
	case Not:
		inner := SQL(node.Inner, args)
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	default:
		return ""
	}
}

func joinChildren(nodes []Node, sep string, args *Args) string {
	parts := make([]string, 0, len(nodes))
	for _, child := range nodes {
		if s := SQL(child, args); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func leafSQL(leaf Leaf, args *Args) string {
	col := QuoteIdentifier(leaf.Column)

	switch leaf.Op {
	case OpEqual:
		if leaf.Value == nil {
			return fmt.Sprintf("%s IS NULL", col)
		}
		return fmt.Sprintf("%s = %s", col, args.Add(leaf.Value))
	case OpNotEqual:
		if leaf.Value == nil {
			return fmt.Sprintf("%s IS NOT NULL", col)
		}
		return fmt.Sprintf("%s <> %s", col, args.Add(leaf.Value))
	case OpGreaterThan:
		return fmt.Sprintf("%s > %s", col, args.Add(leaf.Value))
	case OpGreaterOrEqual:
		return fmt.Sprintf("%s >= %s", col, args.Add(leaf.Value))
	case OpLessThan:
		return fmt.Sprintf("%s < %s", col, args.Add(leaf.Value))
	case OpLessOrEqual:
		return fmt.Sprintf("%s <= %s", col, args.Add(leaf.Value))
	case OpIn:
		return fmt.Sprintf("%s = ANY(%s)", col, args.Add(inSet(leaf.Value)))
	case OpNotIn:
		return fmt.Sprintf("NOT (%s = ANY(%s))", col, args.Add(inSet(leaf.Value)))
	default:
		return fmt.Sprintf("%s = %s", col, args.Add(leaf.Value))
	}
}

// inSet normalizes an IN payload into a slice pgx can bind as an array.
func inSet(v interface{}) interface{} {
	switch v.(type) {
	case []interface{}, []string, []int64, []int:
		return v
	default:
		return []interface{}{v}
	}
}
