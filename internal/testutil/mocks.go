// Package testutil provides shared test utilities and mocks for unit testing.
package testutil

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/entrybase-dev/entrybase/internal/entries"
)

// MockLookup implements entries.Lookup for testing. Callbacks override the
// canned responses; every issued query is recorded for assertions.
type MockLookup struct {
	ColumnResult []int64
	ScalarResult int64
	ScalarMiss   bool

	OnColumn func(ctx context.Context, sql string, args ...interface{}) ([]int64, error)
	OnScalar func(ctx context.Context, sql string, args ...interface{}) (int64, error)

	ColumnQueries []string
	ScalarQueries []string
}

func (m *MockLookup) Column(ctx context.Context, sql string, args ...interface{}) ([]int64, error) {
	m.ColumnQueries = append(m.ColumnQueries, sql)
	if m.OnColumn != nil {
		return m.OnColumn(ctx, sql, args...)
	}
	return m.ColumnResult, nil
}

func (m *MockLookup) Scalar(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	m.ScalarQueries = append(m.ScalarQueries, sql)
	if m.OnScalar != nil {
		return m.OnScalar(ctx, sql, args...)
	}
	if m.ScalarMiss {
		return 0, pgx.ErrNoRows
	}
	return m.ScalarResult, nil
}

// MockIdentity implements entries.Identity with a fixed grant set.
type MockIdentity struct {
	UserID int64
	Grants map[string]bool
}

func (m *MockIdentity) ID() int64 { return m.UserID }

func (m *MockIdentity) Can(permission string) bool { return m.Grants[permission] }

// MockRegistry implements entries.SectionRegistry with a fixed section list.
type MockRegistry struct {
	Sections []*entries.Section
	Err      error
}

func (m *MockRegistry) EditableSections(ctx context.Context, ident entries.Identity) ([]*entries.Section, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sections, nil
}
