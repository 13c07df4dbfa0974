package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/service"
	"github.com/registrack/backoffice-gateway/internal/upstream"
)

type fakeRecordService struct {
	set     domain.RecordSet
	err     error
	lastOps service.RecordOptions
}

func (f *fakeRecordService) Records(_ context.Context, kind domain.RecordKind, opts service.RecordOptions) (domain.RecordSet, error) {
	f.lastOps = opts
	if f.err != nil {
		return domain.RecordSet{}, f.err
	}
	set := f.set
	set.Kind = kind
	return set, nil
}

func (f *fakeRecordService) IncomeSummary(ctx context.Context, opts service.RecordOptions) (domain.RecordSet, error) {
	return f.Records(ctx, domain.KindIncomeSummary, opts)
}

func recordsRouter(svc service.RecordServiceInterface) http.Handler {
	h := NewRecordsHandler(svc)
	r := chi.NewRouter()
	r.Get("/records/income-summary", h.IncomeSummary)
	r.Get("/records/{kind}", h.List)
	return r
}

func TestRecordsHandlerList(t *testing.T) {
	svc := &fakeRecordService{set: domain.RecordSet{
		Records: []domain.CanonicalRecord{{ClientName: "Acme Corp", Status: "vigente"}},
	}}
	router := recordsRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/services", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	var set domain.RecordSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if set.Kind != domain.KindServiceSummary || len(set.Records) != 1 {
		t.Errorf("unexpected set: %+v", set)
	}
}

func TestRecordsHandlerUnknownKind(t *testing.T) {
	router := recordsRouter(&fakeRecordService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRecordsHandlerIncomeSummaryKindNotListable(t *testing.T) {
	router := recordsRouter(&fakeRecordService{})
	rec := httptest.NewRecorder()
	// income-summary has its own route; the generic kind route must not
	// double-serve it.
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/income-summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected dedicated income-summary route, got %d", rec.Code)
	}
}

func TestRecordsHandlerSortParam(t *testing.T) {
	svc := &fakeRecordService{set: domain.RecordSet{Records: []domain.CanonicalRecord{}}}
	router := recordsRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/renewals?sort=days_remaining", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastOps.Sort != service.RecordSortDaysRemaining {
		t.Errorf("expected sort option forwarded, got %q", svc.lastOps.Sort)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/renewals?sort=amount", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported sort, got %d", rec.Code)
	}
}

func TestRecordsHandlerUpstreamStatusError(t *testing.T) {
	svc := &fakeRecordService{err: &upstream.StatusError{Endpoint: "/api/pagos", StatusCode: 503}}
	router := recordsRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/payments", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]int `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "UPSTREAM_ERROR" || body.Error.Details["upstream_status"] != 503 {
		t.Errorf("unexpected error body: %+v", body)
	}
}

func TestRecordsHandlerNoDataPayload(t *testing.T) {
	svc := &fakeRecordService{set: domain.RecordSet{Records: []domain.CanonicalRecord{}, NoData: true}}
	router := recordsRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/payments", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("no data is not an error, got %d", rec.Code)
	}
	var set domain.RecordSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !set.NoData {
		t.Error("expected no_data flag in response")
	}
	if set.Records == nil {
		t.Error("records should serialize as an empty array")
	}
}
