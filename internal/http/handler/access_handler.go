package handler

import (
	"net/http"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/http/middleware"
	"github.com/registrack/backoffice-gateway/internal/http/response"
)

// AccessHandler serves the session's resolved access profile. The frontend
// calls this once after login and drives its navigation from the flags.
type AccessHandler struct{}

func NewAccessHandler() *AccessHandler {
	return &AccessHandler{}
}

func (h *AccessHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	snapshot, ok := middleware.SnapshotFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access snapshot", nil)
		return
	}

	role := snapshot.Role
	permissions := role.Permissions
	if permissions == nil {
		permissions = map[string]domain.ActionFlags{}
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"subject": claims.Subject,
		"role": map[string]any{
			"id":   role.ID,
			"name": role.Name,
		},
		"access":      snapshot.Access,
		"permissions": permissions,
	})
}
