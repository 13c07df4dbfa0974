package access

import "github.com/registrack/backoffice-gateway/internal/domain"

// Access is the set of capability flags derived from one identity. The flags
// are independent answers, not a hierarchy: Employee is implied by Admin but
// the reverse never holds, and Client can coexist with nothing else.
type Access struct {
	Administrative bool `json:"administrative"`
	Client         bool `json:"client"`
	Admin          bool `json:"admin"`
	Employee       bool `json:"employee"`
}

// administrativeRoleNames are the free-text labels that grant administrative
// standing when no stronger signal is available. Matching is last resort
// behind the id and permission-matrix checks.
var administrativeRoleNames = map[string]struct{}{
	"administrador": {},
	"admin":         {},
	"empleado":      {},
	"employee":      {},
	"supervisor":    {},
	"gerente":       {},
	"manager":       {},
}

// adminOnlyRoleNames restrict the Admin flag; employee-grade labels are not
// enough.
var adminOnlyRoleNames = map[string]struct{}{
	"administrador": {},
	"admin":         {},
}

var employeeRoleNames = map[string]struct{}{
	"empleado": {},
	"employee": {},
}

var clientRoleNames = map[string]struct{}{
	"cliente": {},
	"client":  {},
}

// administrativeModules is the fixed allow-list of module keys whose grants
// make a permission matrix administrative. Keys are in backend convention
// (no gestion_ prefix).
var administrativeModules = []string{
	"usuarios",
	"empleados",
	"roles",
	"permisos",
	"privilegios",
	"solicitudes",
	"citas",
	"seguimiento",
	"clientes",
	"pagos",
	"servicios",
	"empresas",
	"archivos",
	"tipo_archivos",
	"solicitud_cita",
	"detalles_orden",
	"detalles_procesos",
	"servicios_procesos",
}

// Classify resolves an arbitrary identity object into capability flags. It
// is a pure function: no I/O, no ambient state, and malformed input always
// degrades to the all-false classification instead of failing.
func Classify(identity map[string]any) Access {
	return ClassifyRole(ParseIdentity(identity).Model())
}

// ClassifyRole answers the capability questions for an already-normalized
// role.
func ClassifyRole(role *domain.RoleModel) Access {
	if role == nil {
		return Access{}
	}

	name := NormalizeRoleName(role.Name)

	a := Access{
		Administrative: isAdministrative(role, name),
	}

	_, a.Client = clientRoleNames[name]

	if !role.IDEquals(domain.RoleIDClient) {
		if role.IDEquals(domain.RoleIDAdmin) {
			a.Admin = true
		} else if _, ok := adminOnlyRoleNames[name]; ok {
			a.Admin = true
		}
	}

	if role.IDEquals(domain.RoleIDEmployee) {
		a.Employee = true
	} else if _, ok := employeeRoleNames[name]; ok {
		a.Employee = true
	} else if a.Admin {
		// Admins carry employee-level capability. One-directional: an
		// employee never gains admin standing this way.
		a.Employee = true
	}

	return a
}

// isAdministrative runs the three-step priority check. A recognized id is
// terminal for this verdict: id 1 hard-denies administrative standing even
// when the same payload carries an elevated permission matrix. The source
// system behaves this way and routing guards depend on it, so the
// suppression is kept rather than "fixed".
func isAdministrative(role *domain.RoleModel, normalizedName string) bool {
	if role.HasID() {
		switch *role.ID {
		case domain.RoleIDAdmin, domain.RoleIDEmployee:
			return true
		case domain.RoleIDClient:
			return false
		}
		// Custom role ids fall through to the weaker signals.
	}

	if hasAdministrativeMatrix(role.Permissions) {
		return true
	}

	_, ok := administrativeRoleNames[normalizedName]
	return ok
}

func hasAdministrativeMatrix(permissions map[string]domain.ActionFlags) bool {
	if len(permissions) == 0 {
		return false
	}
	if permissions["dashboard"].Leer {
		return true
	}
	for _, module := range administrativeModules {
		if permissions[module].Any() {
			return true
		}
	}
	return false
}
