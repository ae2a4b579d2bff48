package module

import (
	"fmt"

	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
)

// Module is the hierarchy view returned to callers: a stored record plus the
// derived display label and, for roots, its attached children.
type Module struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Route       string   `json:"route"`
	Description string   `json:"description"`
	ParentID    *int64   `json:"parent_id,omitempty"`
	Label       string   `json:"label"`
	Children    []Module `json:"children,omitempty"`
}

func (m *Module) IsRoot() bool {
	return m.ParentID == nil
}

// Label renders the display name for a module. Children are shown under their
// parent as "Parent → Child".
func Label(parentName, name string) string {
	if parentName == "" {
		return name
	}
	return fmt.Sprintf("%s → %s", parentName, name)
}

func FromDataModel(m *moduleDatamodel.Module, parentName string) Module {
	return Module{
		ID:          m.ID,
		Name:        m.Name,
		Route:       m.Route,
		Description: m.Description,
		ParentID:    m.ParentID,
		Label:       Label(parentName, m.Name),
	}
}
