package access

import "github.com/registrack/backoffice-gateway/internal/domain"

// actionAliases maps frontend action names onto the backend's flag names.
// "editar" is the only alias the system has ever had.
var actionAliases = map[string]string{
	"editar": "actualizar",
}

// NormalizeAction resolves an action name to backend convention. Only the
// alias is rewritten; every other name passes through untouched.
func NormalizeAction(action string) string {
	if canonical, ok := actionAliases[action]; ok {
		return canonical
	}
	return action
}

// HasPermission answers a fine-grained (resource, action) query against a
// role. Administrative roles short-circuit to true. Otherwise the resource is
// normalized to a module key (gestion_ prefix stripped, lowercased), the
// action de-aliased, and the matrix consulted. Matrix lookups are strict: an
// absent module, a malformed entry, or a "truthy" non-boolean value from the
// API all deny. Denial is a value, never an error.
func HasPermission(role *domain.RoleModel, resource, action string) bool {
	if role == nil {
		return false
	}
	if ClassifyRole(role).Administrative {
		return true
	}
	if len(role.Permissions) == 0 {
		return false
	}
	flags, ok := role.Permissions[NormalizeModuleKey(resource)]
	if !ok {
		return false
	}
	return flags.Allows(NormalizeAction(action))
}
