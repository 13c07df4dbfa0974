package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/repository"
)

type fakeAuditService struct {
	lastFilter repository.AuditFilter
	lastPage   repository.PageRequest
	result     repository.PageResult[domain.AccessDecision]
	err        error
}

func (f *fakeAuditService) RecordDecision(domain.AccessDecision) {}

func (f *fakeAuditService) List(filter repository.AuditFilter, page repository.PageRequest) (repository.PageResult[domain.AccessDecision], error) {
	f.lastFilter = filter
	f.lastPage = page
	return f.result, f.err
}

func (f *fakeAuditService) Close(context.Context) error { return nil }

func TestAuditHandlerList(t *testing.T) {
	svc := &fakeAuditService{result: repository.PageResult[domain.AccessDecision]{
		Items:      []domain.AccessDecision{{Subject: "user-1", Module: "servicios", Allowed: true}},
		Page:       1,
		PageSize:   50,
		Total:      1,
		TotalPages: 1,
	}}
	h := NewAuditHandler(svc, 50)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []domain.AccessDecision `json:"items"`
		Total int64                   `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || len(body.Items) != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
	if svc.lastPage.PageSize != 50 {
		t.Errorf("expected configured default page size, got %d", svc.lastPage.PageSize)
	}
}

func TestAuditHandlerListFilters(t *testing.T) {
	svc := &fakeAuditService{}
	h := NewAuditHandler(svc, 50)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?subject=user-1&module=pagos&allowed=false&page=2&page_size=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastFilter.Subject != "user-1" || svc.lastFilter.Module != "pagos" {
		t.Errorf("unexpected filter: %+v", svc.lastFilter)
	}
	if svc.lastFilter.Allowed == nil || *svc.lastFilter.Allowed {
		t.Error("expected allowed=false filter")
	}
	if svc.lastPage.Page != 2 || svc.lastPage.PageSize != 10 {
		t.Errorf("unexpected page request: %+v", svc.lastPage)
	}
}

func TestAuditHandlerListAuditDisabled(t *testing.T) {
	h := NewAuditHandler(nil, 50)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when auditing is disabled, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "AUDIT_DISABLED" {
		t.Errorf("expected AUDIT_DISABLED, got %q", body.Error.Code)
	}
}

func TestAuditHandlerListRejectsBadParams(t *testing.T) {
	h := NewAuditHandler(&fakeAuditService{}, 50)

	for _, query := range []string{"?page=0", "?page=abc", "?page_size=-1", "?allowed=maybe"} {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/admin/audit"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, rec.Code)
		}
	}
}
