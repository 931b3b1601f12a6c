package entries

type filterState int

const (
	filterUnset filterState = iota
	filterSet
	filterImpossible
)

// IDFilter is a tri-state identifier filter: unset (no restriction), a set of
// identifiers, or impossible (a handle resolved to nothing, so the query can
// match no rows).
type IDFilter struct {
	state filterState
	ids   []int64
}

// IDFilterOf builds a filter restricted to the given identifiers.
func IDFilterOf(ids ...int64) IDFilter {
	return IDFilter{state: filterSet, ids: ids}
}

// ImpossibleFilter marks a filter no row can satisfy.
func ImpossibleFilter() IDFilter {
	return IDFilter{state: filterImpossible}
}

// IsUnset reports whether the filter places no restriction.
func (f IDFilter) IsUnset() bool { return f.state == filterUnset }

// IsImpossible reports whether the filter can match no rows.
func (f IDFilter) IsImpossible() bool { return f.state == filterImpossible }

// IDs returns the restricted identifier set. Empty unless the filter is set.
func (f IDFilter) IDs() []int64 {
	if f.state != filterSet {
		return nil
	}
	return f.ids
}
