package entries

import (
	"time"

	"github.com/entrybase-dev/entrybase/internal/query"
)

// OrderBy represents an ordering directive.
type OrderBy struct {
	Column string
	Desc   bool
}

// Criteria is the mutable accumulator for an entry query. Builder calls
// return the same instance for chaining. Handles stay symbolic until Prepare
// resolves them; after Prepare the criteria is spent and must not be reused.
//
// Criteria is not safe for concurrent use: one instance belongs to one
// request.
type Criteria struct {
	section     interface{}
	entryType   interface{}
	authorID    interface{}
	authorGroup interface{}
	postDate    []interface{}
	expiryDate  []interface{}
	slug        interface{}
	title       interface{}
	status      interface{}
	editable    bool
	refs        []string
	structureID *int64
	orderBy     []OrderBy
	limit       *int
	offset      *int
	prepared    bool
}

// NewCriteria creates an empty criteria.
func NewCriteria() *Criteria {
	return &Criteria{}
}

// Section filters by section: a numeric id, a slice of ids, a handle string
// (comparison conventions apply), a slice of handles, or a *Section.
func (c *Criteria) Section(value interface{}) *Criteria {
	c.section = value
	return c
}

// Type filters by entry type, with the same accepted shapes as Section.
func (c *Criteria) Type(value interface{}) *Criteria {
	c.entryType = value
	return c
}

// AuthorID filters by author identifier(s).
func (c *Criteria) AuthorID(value interface{}) *Criteria {
	c.authorID = value
	return c
}

// AuthorGroup filters by the author's user group, with the same accepted
// shapes as Section. Requires the group-membership join.
func (c *Criteria) AuthorGroup(value interface{}) *Criteria {
	c.authorGroup = value
	return c
}

// PostDate replaces the post-date filter wholesale. The value may be a single
// comparison value or a sequence of operator-prefixed strings or tagged
// comparisons.
func (c *Criteria) PostDate(value interface{}) *Criteria {
	c.postDate = toValueList(value)
	return c
}

// ExpiryDate replaces the expiry-date filter wholesale.
func (c *Criteria) ExpiryDate(value interface{}) *Criteria {
	c.expiryDate = toValueList(value)
	return c
}

// Before restricts post dates to strictly before t. Unlike PostDate it
// accumulates, so Before and After compose into a range in either call order.
func (c *Criteria) Before(t time.Time) *Criteria {
	c.postDate = append(c.postDate, query.Lt(t))
	return c
}

// After restricts post dates to t or later. Accumulates like Before.
func (c *Criteria) After(t time.Time) *Criteria {
	c.postDate = append(c.postDate, query.Gte(t))
	return c
}

// Slug filters by entry slug.
func (c *Criteria) Slug(value interface{}) *Criteria {
	c.slug = value
	return c
}

// Title filters by entry title.
func (c *Criteria) Title(value interface{}) *Criteria {
	c.title = value
	return c
}

// Status filters by entry status.
func (c *Criteria) Status(value interface{}) *Criteria {
	c.status = value
	return c
}

// Editable restricts the query to entries the current identity may edit.
func (c *Criteria) Editable(editable bool) *Criteria {
	c.editable = editable
	return c
}

// Ref filters by "section/slug"-style reference strings.
func (c *Criteria) Ref(refs ...string) *Criteria {
	c.refs = append(c.refs, refs...)
	return c
}

// StructureID pins the hierarchical structure context. An explicit value
// always wins over the automatic derivation in Prepare.
func (c *Criteria) StructureID(id int64) *Criteria {
	c.structureID = &id
	return c
}

// OrderBy replaces the ordering directives.
func (c *Criteria) OrderBy(order ...OrderBy) *Criteria {
	c.orderBy = order
	return c
}

// Limit caps the number of returned entries.
func (c *Criteria) Limit(limit int) *Criteria {
	c.limit = &limit
	return c
}

// Offset skips the given number of entries.
func (c *Criteria) Offset(offset int) *Criteria {
	c.offset = &offset
	return c
}

// toValueList normalizes assignment values into the accumulated form used by
// date fields.
func toValueList(value interface{}) []interface{} {
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
	case []query.Cmp:
		out := make([]interface{}, len(v))
		for i, cmp := range v {
			out[i] = cmp
		}
		return out
	default:
		return []interface{}{v}
	}
}
