package entries

import (
	"strings"

	"github.com/entrybase-dev/entrybase/internal/query"
)

// ParseRefs turns "section/slug"-style reference strings into a predicate.
// A bare "slug" matches on the slug column alone; "section/slug" additionally
// matches the section handle, which requires the sections join. References
// are ORed together: an entry matches if it satisfies any one of them.
//
// The second return reports whether the sections join is needed. The caller
// adds it exactly once however many two-segment refs appear.
func ParseRefs(refs []string) (query.Node, bool) {
	var nodes []query.Node
	joinRequired := false

	for _, ref := range refs {
		segments := splitRef(ref)
		switch len(segments) {
		case 0:
			continue
		case 1:
			nodes = append(nodes, query.Leaf{
				Column: "entries.slug",
				Op:     query.OpEqual,
				Value:  segments[0],
			})
		default:
			joinRequired = true
			nodes = append(nodes, query.NewAnd(
				query.Leaf{Column: "sections.handle", Op: query.OpEqual, Value: segments[0]},
				query.Leaf{Column: "entries.slug", Op: query.OpEqual, Value: segments[1]},
			))
		}
	}

	return query.NewOr(nodes...), joinRequired
}

// splitRef splits a reference on "/" and discards empty segments.
func splitRef(ref string) []string {
	var segments []string
	for _, seg := range strings.Split(ref, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
