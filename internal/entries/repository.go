package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/entrybase-dev/entrybase/internal/database"
	"github.com/entrybase-dev/entrybase/internal/observability"
)

// Repository prepares and executes entry queries against the store.
type Repository struct {
	db      database.Executor
	metrics *observability.Metrics
}

// NewRepository creates an entry repository. Metrics may be nil.
func NewRepository(db database.Executor, metrics *observability.Metrics) *Repository {
	return &Repository{db: db, metrics: metrics}
}

// Find prepares the criteria and returns the matching entries. Unsatisfiable
// queries return an empty slice without touching the store.
func (r *Repository) Find(ctx context.Context, c *Criteria, deps PrepareDeps) ([]Entry, error) {
	start := time.Now()
	if deps.Metrics == nil {
		deps.Metrics = r.metrics
	}

	pq, err := c.Prepare(ctx, deps)
	if err != nil {
		r.record("error", start)
		return nil, err
	}
	if pq.Empty {
		r.record("empty", start)
		return []Entry{}, nil
	}

	sql, args := pq.SQL()
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		r.record("error", start)
		return nil, fmt.Errorf("executing entry query: %w", err)
	}
	defer rows.Close()

	results := []Entry{}
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.SectionID,
			&e.TypeID,
			&e.AuthorID,
			&e.Slug,
			&e.Title,
			&e.Status,
			&e.PostDate,
			&e.ExpiryDate,
		)
		if err != nil {
			r.record("error", start)
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		r.record("error", start)
		return nil, err
	}

	r.record("ok", start)
	return results, nil
}

// Count prepares the criteria and returns the number of matching entries.
func (r *Repository) Count(ctx context.Context, c *Criteria, deps PrepareDeps) (int64, error) {
	if deps.Metrics == nil {
		deps.Metrics = r.metrics
	}

	pq, err := c.Prepare(ctx, deps)
	if err != nil {
		return 0, err
	}
	if pq.Empty {
		return 0, nil
	}

	sql, args := pq.CountSQL()
	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

func (r *Repository) record(outcome string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordEntryQuery(outcome, time.Since(start))
	}
}
