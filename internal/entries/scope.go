package entries

import (
	"context"
	"fmt"

	"github.com/entrybase-dev/entrybase/internal/query"
)

// Identity is an authenticated caller. The auth package provides the real
// implementation from JWT claims.
type Identity interface {
	// ID returns the numeric user identifier.
	ID() int64

	// Can reports whether the identity holds the given permission key.
	Can(permission string) bool
}

// SectionRegistry exposes the sections an identity may edit.
type SectionRegistry interface {
	EditableSections(ctx context.Context, ident Identity) ([]*Section, error)
}

// scopeEditable restricts a query to entries the identity is authorized to
// edit. With no authenticated identity the query is well-formed but
// unsatisfiable, which is reported via ErrUnsatisfiable rather than a hard
// failure.
//
// Within editable non-single sections where the identity lacks the section's
// peer-edit permission, authorship is restricted:
// (section_id <> s) OR (author_id = identity). The identity still sees every
// entry in sections where it does hold peer-edit rights.
func scopeEditable(ctx context.Context, ident Identity, registry SectionRegistry) (query.Node, error) {
	if ident == nil {
		return nil, ErrUnsatisfiable
	}

	sections, err := registry.EditableSections(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("loading editable sections: %w", err)
	}
	if len(sections) == 0 {
		return nil, ErrUnsatisfiable
	}

	ids := make([]int64, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}

	nodes := []query.Node{
		query.Leaf{Column: "entries.section_id", Op: query.OpIn, Value: ids},
	}

	for _, s := range sections {
		if s.Type == SectionTypeSingle {
			continue
		}
		if ident.Can(SectionPermission(PermissionEditPeerEntries, s.ID)) {
			continue
		}
		nodes = append(nodes, query.NewOr(
			query.Leaf{Column: "entries.section_id", Op: query.OpNotEqual, Value: s.ID},
			query.Leaf{Column: "entries.author_id", Op: query.OpEqual, Value: ident.ID()},
		))
	}

	return query.NewAnd(nodes...), nil
}
