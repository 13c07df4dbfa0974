package access

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

// RoleRefKind tags the shape the role value arrived in. The business API has
// shipped all three shapes across endpoint versions, and callers upstream of
// the gateway do not privilege any of them.
type RoleRefKind int

const (
	// RoleRefNone means no usable role value was found. A role field that is
	// present but is neither string, number nor object also collapses to
	// this kind (malformed identities degrade to "no role", never error).
	RoleRefNone RoleRefKind = iota
	// RoleRefNumericID means only a numeric id was found.
	RoleRefNumericID
	// RoleRefNameOnly means only a free-text role name was found.
	RoleRefNameOnly
	// RoleRefFullRole means a nested role object was found, possibly
	// carrying id, name and a permission matrix.
	RoleRefFullRole
)

// RoleRef is the tagged union produced from an arbitrary identity payload.
// It is the single place the three duck-typed role shapes are reconciled;
// everything downstream works on the canonical RoleModel it yields.
type RoleRef struct {
	Kind        RoleRefKind
	ID          *int
	Name        string
	Permissions map[string]domain.ActionFlags
}

// ParseIdentity extracts a RoleRef from a decoded identity object. The
// object may carry the role as a plain string (`rol`), a top-level numeric
// id (`id_rol`/`idRol`), or a nested object (`rol: {id, nombre, permisos}`).
// Any or all of these may be absent.
func ParseIdentity(identity map[string]any) RoleRef {
	if identity == nil {
		return RoleRef{Kind: RoleRefNone}
	}

	ref := RoleRef{Kind: RoleRefNone}

	rolValue, rolPresent := identity["rol"]
	if !rolPresent {
		rolValue, rolPresent = identity["role"]
	}

	var rolObject map[string]any
	if rolPresent {
		switch v := rolValue.(type) {
		case string:
			if name := strings.TrimSpace(v); name != "" {
				ref.Kind = RoleRefNameOnly
				ref.Name = name
			}
		case map[string]any:
			rolObject = v
		default:
			if id, ok := asRoleID(v); ok {
				ref.Kind = RoleRefNumericID
				ref.ID = &id
			}
			// Anything else (bool, array, null) is a malformed role value
			// and stays RoleRefNone.
		}
	}

	// Id extraction priority: rol.id, id_rol, idRol, rol.id_rol.
	idCandidates := []any{nil, identity["id_rol"], identity["idRol"], nil}
	if rolObject != nil {
		idCandidates[0] = rolObject["id"]
		idCandidates[3] = rolObject["id_rol"]
	}
	for _, candidate := range idCandidates {
		if candidate == nil {
			continue
		}
		if id, ok := asRoleID(candidate); ok {
			ref.ID = &id
			break
		}
	}

	if rolObject != nil {
		ref.Kind = RoleRefFullRole
		ref.Name = roleObjectName(rolObject)
		ref.Permissions = parsePermissionMatrix(rolObject)
	} else if ref.ID != nil && ref.Kind == RoleRefNone {
		ref.Kind = RoleRefNumericID
	}

	return ref
}

// Model builds the session-scoped canonical RoleModel from the reference.
func (r RoleRef) Model() *domain.RoleModel {
	return &domain.RoleModel{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: r.Permissions,
	}
}

func roleObjectName(obj map[string]any) string {
	for _, key := range []string{"nombre", "name"} {
		if s, ok := obj[key].(string); ok {
			if name := strings.TrimSpace(s); name != "" {
				return name
			}
		}
	}
	return ""
}

func parsePermissionMatrix(obj map[string]any) map[string]domain.ActionFlags {
	var raw map[string]any
	for _, key := range []string{"permisos", "permissions"} {
		if m, ok := obj[key].(map[string]any); ok {
			raw = m
			break
		}
	}
	if raw == nil {
		return nil
	}
	matrix := make(map[string]domain.ActionFlags, len(raw))
	for module, value := range raw {
		flags, ok := value.(map[string]any)
		if !ok {
			continue
		}
		matrix[NormalizeModuleKey(module)] = domain.ActionFlags{
			Crear:      flags["crear"] == true,
			Leer:       flags["leer"] == true,
			Actualizar: flags["actualizar"] == true,
			Eliminar:   flags["eliminar"] == true,
		}
	}
	return matrix
}

// asRoleID coerces the numeric shapes JSON decoding can produce. Numeric
// strings are accepted because one legacy endpoint serialized ids as
// strings.
func asRoleID(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// NormalizeRoleName lowercases and trims a role name for comparison. Role
// labels are free text typed by admins, so comparisons are never
// case-sensitive.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeModuleKey strips the frontend's literal "gestion_" prefix and
// lowercases, yielding the backend's module key convention.
func NormalizeModuleKey(resource string) string {
	key := strings.ToLower(strings.TrimSpace(resource))
	return strings.TrimPrefix(key, "gestion_")
}
