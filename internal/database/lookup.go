package database

import (
	"context"
)

// Lookup runs the small identifier-resolution queries the entries package
// issues while preparing a query. It satisfies entries.Lookup.
type Lookup struct {
	executor Executor
}

// NewLookup creates a lookup executor over the given database.
func NewLookup(executor Executor) *Lookup {
	return &Lookup{executor: executor}
}

// Column executes sql and returns the first column of every row.
func (l *Lookup) Column(ctx context.Context, sql string, args ...interface{}) ([]int64, error) {
	rows, err := l.executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Scalar executes sql and returns the first column of the first row. Returns
// pgx.ErrNoRows when the query matches nothing.
func (l *Lookup) Scalar(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	var v int64
	if err := l.executor.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}
