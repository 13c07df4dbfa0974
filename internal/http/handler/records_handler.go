package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/http/middleware"
	"github.com/registrack/backoffice-gateway/internal/http/response"
	"github.com/registrack/backoffice-gateway/internal/service"
	"github.com/registrack/backoffice-gateway/internal/upstream"
)

// RecordsHandler serves canonical record sets per kind.
type RecordsHandler struct {
	svc service.RecordServiceInterface
}

func NewRecordsHandler(svc service.RecordServiceInterface) *RecordsHandler {
	return &RecordsHandler{svc: svc}
}

func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := domain.RecordKind(chi.URLParam(r, "kind"))
	if !domain.ValidRecordKind(kind) || kind == domain.KindIncomeSummary {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "unknown record kind", nil)
		return
	}

	opts := service.RecordOptions{
		BearerToken: middleware.RawTokenFromContext(r.Context()),
		Sort:        r.URL.Query().Get("sort"),
	}
	if opts.Sort != "" && opts.Sort != service.RecordSortDaysRemaining {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unsupported sort", map[string]string{"sort": opts.Sort})
		return
	}

	set, err := h.svc.Records(r.Context(), kind, opts)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, set)
}

func (h *RecordsHandler) IncomeSummary(w http.ResponseWriter, r *http.Request) {
	opts := service.RecordOptions{
		BearerToken: middleware.RawTokenFromContext(r.Context()),
	}
	set, err := h.svc.IncomeSummary(r.Context(), opts)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, set)
}

// writeUpstreamError maps business-API failures to gateway responses. A
// non-2xx from upstream is reported as 502 so clients can tell gateway
// faults from upstream faults.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		response.Error(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "business API rejected the request",
			map[string]int{"upstream_status": statusErr.StatusCode})
		return
	}
	response.Error(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "business API unavailable", nil)
}
