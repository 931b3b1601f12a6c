package entries

import (
	"context"
	"fmt"

	"github.com/entrybase-dev/entrybase/internal/database"
)

// DBSectionRegistry is the store-backed SectionRegistry: all sections,
// narrowed to the ones the identity holds edit rights on.
type DBSectionRegistry struct {
	db database.Executor
}

// NewSectionRegistry creates a registry over the given database.
func NewSectionRegistry(db database.Executor) *DBSectionRegistry {
	return &DBSectionRegistry{db: db}
}

// EditableSections returns the sections the identity may edit entries in.
func (r *DBSectionRegistry) EditableSections(ctx context.Context, ident Identity) ([]*Section, error) {
	if ident == nil {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT id, handle, name, type, structure_id FROM sections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("loading sections: %w", err)
	}
	defer rows.Close()

	var editable []*Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Handle, &s.Name, &s.Type, &s.StructureID); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		if ident.Can(SectionPermission(PermissionEditEntries, s.ID)) {
			editable = append(editable, &s)
		}
	}
	return editable, rows.Err()
}
