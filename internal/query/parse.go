package query

import (
	"fmt"
	"strings"
	"time"
)

// MalformedPredicateError reports a filter value whose operator prefix could
// not be parsed. This is a caller error and is never swallowed.
type MalformedPredicateError struct {
	Column string
	Raw    string
}

func (e *MalformedPredicateError) Error() string {
	return fmt.Sprintf("malformed predicate for column %q: unrecognized operator in %q", e.Column, e.Raw)
}

// prefixOps maps operator prefixes on string values to comparison operators.
// Longer prefixes come first so "<=" wins over "<".
var prefixOps = []struct {
	prefix string
	op     Op
}{
	{"<=", OpLessOrEqual},
	{">=", OpGreaterOrEqual},
	{"<>", OpNotEqual},
	{"!=", OpNotEqual},
	{"<", OpLessThan},
	{">", OpGreaterThan},
	{"=", OpEqual},
	{"not ", OpNotEqual},
}

// ParseParam translates a raw filter value into a predicate on column.
//
// The value may be a scalar, a Cmp, or a slice of either. Plain string values
// may carry a leading comparison operator ("<", ">=", "<>", "!=", "not ").
// A single plain value becomes an equality leaf, multiple plain values an IN
// leaf, and operator-carrying values are ANDed individually. A leading bare
// "not" (or "!="/"<>") element negates the rest of the set into a NOT IN.
//
// An unrecognized operator character at the head of a string value yields a
// MalformedPredicateError.
func ParseParam(column string, value interface{}) (Node, error) {
	vals := normalizeSlice(value)
	if len(vals) == 0 {
		return nil, nil
	}

	// A set led by a bare negation marker is a NOT IN over the remainder.
	if len(vals) > 1 {
		if marker, ok := vals[0].(string); ok && isNegationMarker(marker) {
			rest := make([]interface{}, 0, len(vals)-1)
			for _, v := range vals[1:] {
				rest = append(rest, normalizeScalar(v))
			}
			if len(rest) == 1 {
				return Leaf{Column: column, Op: OpNotEqual, Value: rest[0]}, nil
			}
			return Leaf{Column: column, Op: OpNotIn, Value: rest}, nil
		}
	}

	cmps := make([]Cmp, 0, len(vals))
	hasOperator := false
	for _, v := range vals {
		cmp, opPresent, err := toCmp(column, v)
		if err != nil {
			return nil, err
		}
		if opPresent {
			hasOperator = true
		}
		cmps = append(cmps, cmp)
	}

	if !hasOperator {
		if len(cmps) == 1 {
			return Leaf{Column: column, Op: OpEqual, Value: cmps[0].Value}, nil
		}
		set := make([]interface{}, 0, len(cmps))
		for _, c := range cmps {
			set = append(set, c.Value)
		}
		return Leaf{Column: column, Op: OpIn, Value: set}, nil
	}

	nodes := make([]Node, 0, len(cmps))
	for _, c := range cmps {
		nodes = append(nodes, Leaf{Column: column, Op: c.Op, Value: c.Value})
	}
	return NewAnd(nodes...), nil
}

// toCmp converts one raw element into a tagged comparison. The second return
// reports whether an explicit operator was present.
func toCmp(column string, v interface{}) (Cmp, bool, error) {
	switch val := v.(type) {
	case Cmp:
		return val, val.Op != OpEqual, nil
	case string:
		op, rest, found := splitOperator(val)
		if !found {
			if startsWithOperatorChar(val) {
				return Cmp{}, false, &MalformedPredicateError{Column: column, Raw: val}
			}
			return Cmp{Op: OpEqual, Value: normalizeScalar(val)}, false, nil
		}
		return Cmp{Op: op, Value: normalizeScalar(rest)}, true, nil
	default:
		return Cmp{Op: OpEqual, Value: v}, false, nil
	}
}

// splitOperator strips a recognized operator prefix from a string value.
func splitOperator(s string) (Op, string, bool) {
	for _, p := range prefixOps {
		if strings.HasPrefix(s, p.prefix) {
			return p.op, strings.TrimSpace(s[len(p.prefix):]), true
		}
	}
	return "", s, false
}

// startsWithOperatorChar reports whether the value looks like it was meant to
// carry an operator that we do not recognize (e.g. "~=foo").
func startsWithOperatorChar(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '~', '^', '|', '&':
		return strings.Contains(s, "=")
	}
	return false
}

func isNegationMarker(s string) bool {
	switch strings.TrimSpace(s) {
	case "not", "!=", "<>":
		return true
	}
	return false
}

// normalizeScalar maps boolean literal strings onto native bools so boolean
// columns compare against their storage representation.
func normalizeScalar(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		switch s {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return v
}

// normalizeSlice widens the accepted input shapes into []interface{}.
func normalizeSlice(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []Cmp:
		out := make([]interface{}, len(v))
		for i, c := range v {
			out[i] = c
		}
		return out
	case []int64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out
	case []int:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out
	default:
		return []interface{}{v}
	}
}

// dateLayouts are the accepted textual date representations, most specific
// first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateParam is the date-aware variant of ParseParam. Native time.Time
// values (bare, inside a Cmp, or as the payload of an operator-prefixed
// string) are canonicalized to UTC RFC 3339 so that lexical and temporal
// ordering agree across both representations.
func ParseDateParam(column string, value interface{}) (Node, error) {
	vals := normalizeSlice(value)
	converted := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		cv, err := canonicalizeDate(column, v)
		if err != nil {
			return nil, err
		}
		converted = append(converted, cv)
	}
	return ParseParam(column, converted)
}

func canonicalizeDate(column string, v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case time.Time:
		return formatDate(val), nil
	case Cmp:
		if t, ok := val.Value.(time.Time); ok {
			return Cmp{Op: val.Op, Value: formatDate(t)}, nil
		}
		if s, ok := val.Value.(string); ok {
			formatted, err := reformatDateString(column, s)
			if err != nil {
				return nil, err
			}
			return Cmp{Op: val.Op, Value: formatted}, nil
		}
		return val, nil
	case string:
		op, rest, found := splitOperator(val)
		formatted, err := reformatDateString(column, rest)
		if err != nil {
			return nil, err
		}
		if !found {
			return formatted, nil
		}
		return Cmp{Op: op, Value: formatted}, nil
	default:
		return v, nil
	}
}

func reformatDateString(column, s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return formatDate(t), nil
		}
	}
	return "", &MalformedPredicateError{Column: column, Raw: s}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
