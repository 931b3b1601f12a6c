package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/entrybase-dev/entrybase/internal/config"
	"github.com/entrybase-dev/entrybase/internal/entries"
)

// orderColumns whitelists the columns the API accepts in order directives,
// mapped to their qualified names.
var orderColumns = map[string]string{
	"id":          "entries.id",
	"slug":        "entries.slug",
	"title":       "entries.title",
	"status":      "entries.status",
	"post_date":   "entries.post_date",
	"expiry_date": "entries.expiry_date",
}

// CriteriaParser parses URL query parameters into entry criteria.
type CriteriaParser struct {
	config *config.Config
}

// NewCriteriaParser creates a new criteria parser
func NewCriteriaParser(cfg *config.Config) *CriteriaParser {
	return &CriteriaParser{config: cfg}
}

// Parse builds a criteria from URL query parameters. Repeatable parameters
// (section, postDate, ref and friends) accumulate; operator prefixes on
// values follow the standard comparison conventions.
func (p *CriteriaParser) Parse(values url.Values) (*entries.Criteria, error) {
	c := entries.NewCriteria()

	if vals := collect(values, "section"); vals != nil {
		c.Section(numericIfPossible(vals))
	}
	if vals := collect(values, "type"); vals != nil {
		c.Type(numericIfPossible(vals))
	}
	if vals := collect(values, "authorId"); vals != nil {
		ids, err := parseIDList("authorId", vals)
		if err != nil {
			return nil, err
		}
		c.AuthorID(ids)
	}
	if vals := collect(values, "authorGroup"); vals != nil {
		c.AuthorGroup(numericIfPossible(vals))
	}
	if vals := collect(values, "postDate"); vals != nil {
		c.PostDate(vals)
	}
	if vals := collect(values, "expiryDate"); vals != nil {
		c.ExpiryDate(vals)
	}
	if vals := collect(values, "slug"); vals != nil {
		c.Slug(asParam(vals))
	}
	if vals := collect(values, "title"); vals != nil {
		c.Title(asParam(vals))
	}
	if vals := collect(values, "status"); vals != nil {
		c.Status(asParam(vals))
	}
	if refs := collect(values, "ref"); refs != nil {
		c.Ref(refs...)
	}

	if v := values.Get("editable"); v != "" {
		editable, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid editable parameter: %w", err)
		}
		c.Editable(editable)
	}

	if v := values.Get("order"); v != "" {
		order, err := parseOrder(v)
		if err != nil {
			return nil, err
		}
		c.OrderBy(order...)
	}

	if err := p.parsePagination(values, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (p *CriteriaParser) parsePagination(values url.Values, c *entries.Criteria) error {
	limit := p.config.API.DefaultPageSize
	if v := values.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid limit parameter: %w", err)
		}
		limit = parsed
	}
	if max := p.config.API.MaxPageSize; max > 0 && limit > max {
		log.Debug().
			Int("requested", limit).
			Int("max", max).
			Msg("Limit capped to max_page_size")
		limit = max
	}
	if limit > 0 {
		c.Limit(limit)
	}

	if v := values.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid offset parameter: %w", err)
		}
		c.Offset(offset)
	}
	return nil
}

// parseOrder parses "post_date.desc,slug" style order directives.
func parseOrder(raw string) ([]entries.OrderBy, error) {
	var order []entries.OrderBy
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		column := part
		desc := false
		if name, dir, found := strings.Cut(part, "."); found {
			column = name
			switch dir {
			case "desc":
				desc = true
			case "asc":
			default:
				return nil, fmt.Errorf("invalid order direction %q", dir)
			}
		}

		qualified, ok := orderColumns[column]
		if !ok {
			return nil, fmt.Errorf("cannot order by %q", column)
		}
		order = append(order, entries.OrderBy{Column: qualified, Desc: desc})
	}
	return order, nil
}

// collect gathers all values for key, splitting comma-separated entries.
func collect(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// asParam narrows a value list back to a scalar when only one value was
// given, so single values compile to equality instead of IN.
func asParam(vals []string) interface{} {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals
}

// numericIfPossible converts a handle list to identifiers when every value
// is a plain integer, so "section=5" filters by id rather than by a handle
// that happens to look like a number.
func numericIfPossible(vals []string) interface{} {
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return asParam(vals)
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		return ids[0]
	}
	return ids
}

func parseIDList(key string, vals []string) (interface{}, error) {
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter: %w", key, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	return ids, nil
}
