package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/entrybase-dev/entrybase/internal/observability"
	"github.com/entrybase-dev/entrybase/internal/query"
)

// Capabilities are the deployment-level feature switches that gate parts of
// the query build.
type Capabilities struct {
	// AuthorFiltering enables author and author-group filters.
	AuthorFiltering bool
}

// PrepareHook runs last in the preparation pipeline for cross-cutting
// concerns outside this package. Returning ErrUnsatisfiable aborts into the
// empty terminal state; any other error is a hard failure.
type PrepareHook func(ctx context.Context, pq *PreparedQuery) error

// PrepareDeps carries the collaborators Prepare needs. All lookups go through
// Lookup; Identity may be nil for unauthenticated callers.
type PrepareDeps struct {
	Lookup   Lookup
	Identity Identity
	Registry SectionRegistry
	Caps     Capabilities
	Hook     PrepareHook
	Metrics  *observability.Metrics
}

// Join is a join the prepared query requires.
type Join struct {
	Table string
	On    string
}

// PreparedQuery is the compiled form of a criteria, consumed by the
// repository. When Empty is set the executor must skip execution entirely
// and report zero rows.
type PreparedQuery struct {
	Table     string
	Columns   []string
	Joins     []Join
	Predicate query.Node
	Order     []OrderBy
	Limit     *int
	Offset    *int
	Empty     bool
}

// entryColumns is the denormalized select-column set for entry rows.
var entryColumns = []string{
	"entries.id",
	"entries.section_id",
	"entries.type_id",
	"entries.author_id",
	"entries.slug",
	"entries.title",
	"entries.status",
	"entries.post_date",
	"entries.expiry_date",
}

// Prepare compiles the accumulated criteria into a PreparedQuery, resolving
// symbolic handles now rather than at assignment time. It must be called
// exactly once per criteria, immediately before execution.
func (c *Criteria) Prepare(ctx context.Context, deps PrepareDeps) (*PreparedQuery, error) {
	if c.prepared {
		return nil, ErrAlreadyPrepared
	}
	c.prepared = true

	resolver := NewHandleResolver(deps.Lookup, deps.Metrics)

	sectionIDs, err := resolver.ResolveIDs(ctx, "sections", c.section)
	if err != nil {
		return nil, err
	}
	typeIDs, err := resolver.ResolveIDs(ctx, "entry_types", c.entryType)
	if err != nil {
		return nil, err
	}
	groupIDs, err := resolver.ResolveIDs(ctx, "user_groups", c.authorGroup)
	if err != nil {
		return nil, err
	}

	pq := &PreparedQuery{
		Table:   "entries",
		Columns: entryColumns,
		Order:   c.orderBy,
		Limit:   c.limit,
		Offset:  c.offset,
	}

	// An unresolvable handle set means the query is provably empty; skip
	// all further predicate construction.
	if sectionIDs.IsImpossible() || typeIDs.IsImpossible() || groupIDs.IsImpossible() {
		pq.Empty = true
		return pq, nil
	}

	var conds []query.Node

	if len(c.postDate) > 0 {
		node, err := query.ParseDateParam("entries.post_date", c.postDate)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}
	if len(c.expiryDate) > 0 {
		node, err := query.ParseDateParam("entries.expiry_date", c.expiryDate)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}

	conds = append(conds, idFilterNode("entries.type_id", typeIDs))

	if c.slug != nil {
		node, err := query.ParseParam("entries.slug", c.slug)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}
	if c.title != nil {
		node, err := query.ParseParam("entries.title", c.title)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}
	if c.status != nil {
		node, err := query.ParseParam("entries.status", c.status)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}

	if deps.Caps.AuthorFiltering {
		if c.authorID != nil {
			node, err := query.ParseParam("entries.author_id", c.authorID)
			if err != nil {
				return nil, err
			}
			conds = append(conds, node)
		}
		if !groupIDs.IsUnset() {
			pq.addJoin("user_group_members", "user_group_members.user_id = entries.author_id")
			conds = append(conds, idFilterNode("user_group_members.group_id", groupIDs))
		}
	}

	if c.editable {
		scope, err := scopeEditable(ctx, deps.Identity, deps.Registry)
		if err != nil {
			if errors.Is(err, ErrUnsatisfiable) {
				pq.Empty = true
				return pq, nil
			}
			return nil, err
		}
		conds = append(conds, scope)
	}

	conds = append(conds, idFilterNode("entries.section_id", sectionIDs))
	if err := c.deriveStructure(ctx, deps.Lookup, sectionIDs); err != nil {
		return nil, err
	}

	if len(c.refs) > 0 {
		refNode, joinSections := ParseRefs(c.refs)
		conds = append(conds, refNode)
		if joinSections {
			pq.addJoin("sections", "sections.id = entries.section_id")
		}
	}

	if len(pq.Order) == 0 && c.structureID == nil {
		pq.Order = []OrderBy{{Column: "entries.post_date", Desc: true}}
	}

	pq.Predicate = query.NewAnd(conds...)

	if deps.Hook != nil {
		if err := deps.Hook(ctx, pq); err != nil {
			if errors.Is(err, ErrUnsatisfiable) {
				pq.Empty = true
				return pq, nil
			}
			return nil, err
		}
	}

	return pq, nil
}

// deriveStructure fills in the structure context when exactly one section is
// targeted and the caller did not pin one explicitly.
func (c *Criteria) deriveStructure(ctx context.Context, lookup Lookup, sectionIDs IDFilter) error {
	if c.structureID != nil {
		return nil
	}
	ids := sectionIDs.IDs()
	if len(ids) != 1 {
		return nil
	}

	id, err := lookup.Scalar(ctx,
		"SELECT structure_id FROM sections WHERE id = $1 AND structure_id IS NOT NULL", ids[0])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("deriving structure for section %d: %w", ids[0], err)
	}
	c.structureID = &id
	return nil
}

// idFilterNode translates a set identifier filter into a predicate leaf.
// Unset filters yield nil, which NewAnd drops.
func idFilterNode(column string, f IDFilter) query.Node {
	ids := f.IDs()
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return query.Leaf{Column: column, Op: query.OpEqual, Value: ids[0]}
	}
	return query.Leaf{Column: column, Op: query.OpIn, Value: ids}
}

func (pq *PreparedQuery) addJoin(table, on string) {
	for _, j := range pq.Joins {
		if j.Table == table {
			return
		}
	}
	pq.Joins = append(pq.Joins, Join{Table: table, On: on})
}

// SQL renders the prepared query as a SELECT with positional arguments.
func (pq *PreparedQuery) SQL() (string, []interface{}) {
	cols := make([]string, len(pq.Columns))
	for i, col := range pq.Columns {
		cols[i] = query.QuoteIdentifier(col)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), query.QuoteIdentifier(pq.Table))

	for _, j := range pq.Joins {
		fmt.Fprintf(&b, " INNER JOIN %s ON %s", query.QuoteIdentifier(j.Table), j.On)
	}

	args := &query.Args{}
	if where := query.SQL(pq.Predicate, args); where != "" {
		b.WriteString(" WHERE " + where)
	}

	if len(pq.Order) > 0 {
		parts := make([]string, len(pq.Order))
		for i, o := range pq.Order {
			dir := " ASC"
			if o.Desc {
				dir = " DESC"
			}
			parts[i] = query.QuoteIdentifier(o.Column) + dir
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if pq.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *pq.Limit)
	}
	if pq.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *pq.Offset)
	}

	return b.String(), args.Values()
}

// CountSQL renders the counting form of the prepared query.
func (pq *PreparedQuery) CountSQL() (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", query.QuoteIdentifier(pq.Table))

	for _, j := range pq.Joins {
		fmt.Fprintf(&b, " INNER JOIN %s ON %s", query.QuoteIdentifier(j.Table), j.On)
	}

	args := &query.Args{}
	if where := query.SQL(pq.Predicate, args); where != "" {
		b.WriteString(" WHERE " + where)
	}

	return b.String(), args.Values()
}
