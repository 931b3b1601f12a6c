package entries

import (
	"context"
	"fmt"

	"github.com/entrybase-dev/entrybase/internal/observability"
	"github.com/entrybase-dev/entrybase/internal/query"
)

// Lookup runs the resolution round-trips the query build needs: a column of
// identifiers or a single scalar. The database package provides the real
// implementation; tests substitute mocks.
type Lookup interface {
	// Column executes sql and returns the first column of every row.
	Column(ctx context.Context, sql string, args ...interface{}) ([]int64, error)

	// Scalar executes sql and returns the first column of the first row,
	// or pgx.ErrNoRows when the query matches nothing.
	Scalar(ctx context.Context, sql string, args ...interface{}) (int64, error)
}

// resolved is implemented by domain objects that already carry their numeric
// identifier, letting the resolver skip the lookup round-trip.
type resolved interface {
	RecordID() int64
}

// HandleResolver resolves symbolic handles to numeric identifiers against a
// reference table.
type HandleResolver struct {
	lookup  Lookup
	metrics *observability.Metrics
}

// NewHandleResolver creates a resolver backed by the given lookup executor.
// Metrics may be nil.
func NewHandleResolver(lookup Lookup, metrics *observability.Metrics) *HandleResolver {
	return &HandleResolver{lookup: lookup, metrics: metrics}
}

// ResolveIDs resolves value into an identifier filter against table. Numeric
// inputs and already-resolved domain objects pass through without a lookup;
// handle strings are matched against the table's handle column using the
// standard comparison conventions. Zero matches yield the impossible filter,
// which callers must treat as "no entries possible", not "no filter".
func (r *HandleResolver) ResolveIDs(ctx context.Context, table string, value interface{}) (IDFilter, error) {
	switch v := value.(type) {
	case nil:
		return IDFilter{}, nil
	case int:
		return IDFilterOf(int64(v)), nil
	case int64:
		return IDFilterOf(v), nil
	case []int:
		ids := make([]int64, len(v))
		for i, n := range v {
			ids[i] = int64(n)
		}
		return IDFilterOf(ids...), nil
	case []int64:
		return IDFilterOf(v...), nil
	case resolved:
		return IDFilterOf(v.RecordID()), nil
	}

	cond, err := query.ParseParam("handle", value)
	if err != nil {
		return IDFilter{}, err
	}
	if cond == nil {
		return IDFilter{}, nil
	}

	args := &query.Args{}
	sql := fmt.Sprintf("SELECT id FROM %s WHERE %s", query.QuoteIdentifier(table), query.SQL(cond, args))

	if r.metrics != nil {
		r.metrics.RecordHandleLookup(table)
	}
	ids, err := r.lookup.Column(ctx, sql, args.Values()...)
	if err != nil {
		return IDFilter{}, fmt.Errorf("resolving handles against %s: %w", table, err)
	}
	if len(ids) == 0 {
		return ImpossibleFilter(), nil
	}
	return IDFilterOf(ids...), nil
}
