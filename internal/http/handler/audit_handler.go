package handler

import (
	"net/http"
	"strconv"

	"github.com/registrack/backoffice-gateway/internal/http/response"
	"github.com/registrack/backoffice-gateway/internal/repository"
	"github.com/registrack/backoffice-gateway/internal/service"
)

// AuditHandler serves the persisted access-decision trail to administrators.
type AuditHandler struct {
	svc             service.AuditServiceInterface
	defaultPageSize int
}

func NewAuditHandler(svc service.AuditServiceInterface, defaultPageSize int) *AuditHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = repository.DefaultPageSize
	}
	return &AuditHandler{svc: svc, defaultPageSize: defaultPageSize}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		response.Error(w, r, http.StatusNotFound, "AUDIT_DISABLED", "the access-decision trail is not enabled on this deployment", nil)
		return
	}
	q := r.URL.Query()

	page := repository.PageRequest{Page: repository.DefaultPage, PageSize: h.defaultPageSize}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "page must be a positive integer", nil)
			return
		}
		page.Page = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "page_size must be a positive integer", nil)
			return
		}
		page.PageSize = n
	}

	filter := repository.AuditFilter{
		Subject: q.Get("subject"),
		Module:  q.Get("module"),
	}
	if raw := q.Get("allowed"); raw != "" {
		allowed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "allowed must be a boolean", nil)
			return
		}
		filter.Allowed = &allowed
	}

	result, err := h.svc.List(filter, page)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list access decisions", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"items":       result.Items,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}
