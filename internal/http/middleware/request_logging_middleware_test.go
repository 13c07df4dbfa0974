package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func captureRequestLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestStructuredRequestLoggerCarriesDomainAttributes(t *testing.T) {
	buf := captureRequestLogs(t)

	r := chi.NewRouter()
	r.Use(StructuredRequestLogger)
	r.Get("/api/v1/records/{kind}", func(w http.ResponseWriter, req *http.Request) {
		annotate(req.Context(), func(a *requestAnnotations) {
			a.subject = "user-7"
			a.verdict = "deny"
		})
		w.WriteHeader(http.StatusForbidden)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/renewals", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["subject"] != "user-7" {
		t.Errorf("subject = %v", line["subject"])
	}
	if line["access_verdict"] != "deny" {
		t.Errorf("access_verdict = %v", line["access_verdict"])
	}
	if line["record_kind"] != "renewals" {
		t.Errorf("record_kind = %v", line["record_kind"])
	}
	if line["status"] != float64(http.StatusForbidden) {
		t.Errorf("status = %v", line["status"])
	}
}

func TestStructuredRequestLoggerWithoutAnnotations(t *testing.T) {
	buf := captureRequestLogs(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	StructuredRequestLogger(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, present := line["subject"]; present {
		t.Error("unauthenticated request should not carry a subject")
	}
	if _, present := line["record_kind"]; present {
		t.Error("non-record route should not carry a record kind")
	}
	if line["method"] != http.MethodGet {
		t.Errorf("method = %v", line["method"])
	}
}
