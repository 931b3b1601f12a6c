// Package entries implements entry queries: a fluent criteria accumulator
// that resolves symbolic handles, applies permission scoping and compiles
// into a single parameterized SELECT at preparation time.
package entries

import (
	"fmt"
	"time"
)

// SectionType classifies how entries are organized within a section.
type SectionType string

const (
	// SectionTypeSingle holds exactly one entry (e.g. a homepage).
	SectionTypeSingle SectionType = "single"
	// SectionTypeChannel holds a flat stream of entries.
	SectionTypeChannel SectionType = "channel"
	// SectionTypeStructure holds hierarchically ordered entries.
	SectionTypeStructure SectionType = "structure"
)

// Section groups entries. Structure sections carry a structure id that
// provides their hierarchical ordering context.
type Section struct {
	ID          int64       `json:"id" db:"id"`
	Handle      string      `json:"handle" db:"handle"`
	Name        string      `json:"name" db:"name"`
	Type        SectionType `json:"type" db:"type"`
	StructureID *int64      `json:"structure_id,omitempty" db:"structure_id"`
}

// RecordID returns the numeric identifier, marking Section as already
// resolved for the handle resolver.
func (s *Section) RecordID() int64 { return s.ID }

// EntryType describes the shape of entries within a section.
type EntryType struct {
	ID     int64  `json:"id" db:"id"`
	Handle string `json:"handle" db:"handle"`
	Name   string `json:"name" db:"name"`
}

// RecordID returns the numeric identifier.
func (t *EntryType) RecordID() int64 { return t.ID }

// UserGroup is a named group of authors.
type UserGroup struct {
	ID     int64  `json:"id" db:"id"`
	Handle string `json:"handle" db:"handle"`
	Name   string `json:"name" db:"name"`
}

// RecordID returns the numeric identifier.
func (g *UserGroup) RecordID() int64 { return g.ID }

// Entry is a content record belonging to a section and entry type.
type Entry struct {
	ID         int64      `json:"id" db:"id"`
	SectionID  int64      `json:"section_id" db:"section_id"`
	TypeID     int64      `json:"type_id" db:"type_id"`
	AuthorID   int64      `json:"author_id" db:"author_id"`
	Slug       string     `json:"slug" db:"slug"`
	Title      string     `json:"title" db:"title"`
	Status     string     `json:"status" db:"status"`
	PostDate   time.Time  `json:"post_date" db:"post_date"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
}

// Permission keys understood by Identity.Can.
const (
	// PermissionEditEntries grants edit access to a section's entries.
	PermissionEditEntries = "editEntries"
	// PermissionEditPeerEntries grants edit access to entries authored by
	// other users within a section.
	PermissionEditPeerEntries = "editPeerEntries"
)

// SectionPermission builds a section-scoped permission key, e.g.
// "editPeerEntries:section:4".
func SectionPermission(permission string, sectionID int64) string {
	return fmt.Sprintf("%s:section:%d", permission, sectionID)
}
