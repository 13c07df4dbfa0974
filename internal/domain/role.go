package domain

// Canonical numeric role ids as assigned by the business backend. The
// backend has carried two conventions over time; id 2 is the authoritative
// administrator id and id 1 always denotes a client.
const (
	RoleIDClient   = 1
	RoleIDAdmin    = 2
	RoleIDEmployee = 3
)

// ActionFlags holds the four CRUD-style grants the backend attaches to a
// module. Absent flags are false.
type ActionFlags struct {
	Crear      bool `json:"crear"`
	Leer       bool `json:"leer"`
	Actualizar bool `json:"actualizar"`
	Eliminar   bool `json:"eliminar"`
}

// Any reports whether at least one flag is granted.
func (f ActionFlags) Any() bool {
	return f.Crear || f.Leer || f.Actualizar || f.Eliminar
}

// Allows reports whether the named action is granted. Action names are the
// backend's own (crear/leer/actualizar/eliminar); unknown names are denied.
func (f ActionFlags) Allows(action string) bool {
	switch action {
	case "crear":
		return f.Crear
	case "leer":
		return f.Leer
	case "actualizar":
		return f.Actualizar
	case "eliminar":
		return f.Eliminar
	default:
		return false
	}
}

// RoleModel is the canonical representation of a role for one authenticated
// session. It is built once from the decoded identity payload and never
// mutated afterwards; re-login replaces it wholesale.
type RoleModel struct {
	ID          *int                   `json:"id,omitempty"`
	Name        string                 `json:"name"`
	Permissions map[string]ActionFlags `json:"permissions,omitempty"`
}

// HasID reports whether a numeric id was present anywhere in the source
// identity payload.
func (r *RoleModel) HasID() bool {
	return r != nil && r.ID != nil
}

// IDEquals reports whether the role carries exactly the given numeric id.
func (r *RoleModel) IDEquals(id int) bool {
	return r != nil && r.ID != nil && *r.ID == id
}
