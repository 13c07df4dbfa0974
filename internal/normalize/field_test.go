package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

func decodeRecord(t *testing.T, raw string) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		t.Fatalf("decode record fixture: %v", err)
	}
	return record
}

func TestClientNameChain(t *testing.T) {
	cases := []struct {
		name   string
		record string
		want   string
	}{
		{"plain string", `{"cliente": "Acme Corp"}`, "Acme Corp"},
		{"composed full name", `{"cliente": {"usuario": {"nombre": "Ana", "apellido": "Ruiz"}}}`, "Ana Ruiz"},
		{"first name only", `{"cliente": {"usuario": {"nombre": "Ana"}}}`, "Ana"},
		{"email fallback", `{"cliente": {"usuario": {"correo": "ana@acme.com"}}}`, "ana@acme.com"},
		{"direct nombre", `{"cliente": {"nombre": "Acme"}}`, "Acme"},
		{"razon social", `{"cliente": {"razon_social": "Acme S.A.S."}}`, "Acme S.A.S."},
		{"flat legacy spelling", `{"cliente_nombre": "Acme Flat"}`, "Acme Flat"},
		{"flat alternate spelling", `{"nombre_cliente": "Acme Alt"}`, "Acme Alt"},
		{"nested order", `{"orden_servicio": {"cliente": {"nombre": "Acme Orden"}}}`, "Acme Orden"},
		{"empty record", `{}`, domain.PlaceholderClientName},
		{"blank string falls through", `{"cliente": "  ", "cliente_nombre": "Acme"}`, "Acme"},
		{"cliente object without usable fields", `{"cliente": {"id": 4}}`, domain.PlaceholderClientName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientNameChain.Resolve(decodeRecord(t, tc.record)); got != tc.want {
				t.Fatalf("resolved %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientNameChainOrderIsSignificant(t *testing.T) {
	// When multiple candidates could match, the earlier declaration wins.
	record := decodeRecord(t, `{
		"cliente": {"usuario": {"nombre": "Ana", "apellido": "Ruiz", "correo": "ana@acme.com"}, "nombre": "Acme"},
		"cliente_nombre": "Flat"
	}`)
	if got := ClientNameChain.Resolve(record); got != "Ana Ruiz" {
		t.Fatalf("composed name must win, got %q", got)
	}
}

func TestEmployeeNameChain(t *testing.T) {
	cases := []struct {
		record string
		want   string
	}{
		{`{"empleado": "Luis P."}`, "Luis P."},
		{`{"empleado": {"usuario": {"nombre": "Luis", "apellido": "Pardo"}}}`, "Luis Pardo"},
		{`{"empleado_nombre": "Luis"}`, "Luis"},
		{`{}`, domain.PlaceholderEmployeeName},
	}
	for _, tc := range cases {
		if got := EmployeeNameChain.Resolve(decodeRecord(t, tc.record)); got != tc.want {
			t.Fatalf("record %s resolved %q, want %q", tc.record, got, tc.want)
		}
	}
}

func TestAmountChainNeverNaNOrNull(t *testing.T) {
	cases := []struct {
		record string
		want   float64
	}{
		{`{"monto": 150.5}`, 150.5},
		{`{"total": "220.75"}`, 220.75},
		{`{"precio": "$300"}`, 300},
		{`{"valor": "1200,50"}`, 1200.50},
		{`{"pago": {"monto": 80}}`, 80},
		{`{"monto": "no disponible"}`, 0},
		{`{"monto": null}`, 0},
		{`{}`, 0},
	}
	for _, tc := range cases {
		got := AmountChain.Resolve(decodeRecord(t, tc.record))
		if got != tc.want {
			t.Fatalf("record %s resolved %v, want %v", tc.record, got, tc.want)
		}
	}
}

func TestAmountChainSkipsUnparseableCandidates(t *testing.T) {
	record := decodeRecord(t, `{"monto": "pendiente", "total": 45}`)
	if got := AmountChain.Resolve(record); got != 45 {
		t.Fatalf("unparseable monto must fall through to total, got %v", got)
	}
}

func TestRecordDateChainLayouts(t *testing.T) {
	cases := []string{
		`{"fecha": "2026-03-15T10:30:00Z"}`,
		`{"fecha": "2026-03-15 10:30:00"}`,
		`{"fecha": "2026-03-15"}`,
		`{"fecha": "15/03/2026"}`,
		`{"created_at": "2026-03-15T10:30:00Z"}`,
	}
	for _, raw := range cases {
		date, ok := RecordDateChain.Resolve(decodeRecord(t, raw))
		if !ok {
			t.Fatalf("record %s should resolve a date", raw)
		}
		if date.Year() != 2026 || date.Month() != time.March || date.Day() != 15 {
			t.Fatalf("record %s resolved %v", raw, date)
		}
	}
	if _, ok := RecordDateChain.Resolve(decodeRecord(t, `{"fecha": "pronto"}`)); ok {
		t.Fatal("unparseable date must not resolve")
	}
}

func TestResolveDaysRemaining(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Direct field wins over the derivation.
	days, ok := ResolveDaysRemaining(decodeRecord(t, `{"dias_restantes": 12, "fecha_vencimiento": "2026-08-03"}`), now)
	if !ok || days != 12 {
		t.Fatalf("direct field should win, got %d ok=%v", days, ok)
	}

	// Derivation from the target date, rounded up.
	days, ok = ResolveDaysRemaining(decodeRecord(t, `{"fecha_vencimiento": "2026-08-04"}`), now)
	if !ok || days != 3 {
		t.Fatalf("expected ceil derivation of 3 days, got %d ok=%v", days, ok)
	}

	// Past target dates go negative rather than clamping; urgency sorting
	// wants overdue items first.
	days, ok = ResolveDaysRemaining(decodeRecord(t, `{"fecha_fin": "2026-07-30"}`), now)
	if !ok || days >= 0 {
		t.Fatalf("expected negative days for overdue, got %d ok=%v", days, ok)
	}

	if _, ok = ResolveDaysRemaining(decodeRecord(t, `{}`), now); ok {
		t.Fatal("no source field should report not-ok")
	}
}

func TestStatusChain(t *testing.T) {
	cases := []struct {
		record string
		want   string
	}{
		{`{"estado": "En proceso"}`, "En proceso"},
		{`{"estado": {"nombre": "Aprobado"}}`, "Aprobado"},
		{`{"status": "active"}`, "active"},
		{`{}`, domain.PlaceholderStatus},
	}
	for _, tc := range cases {
		if got := StatusChain.Resolve(decodeRecord(t, tc.record)); got != tc.want {
			t.Fatalf("record %s resolved %q, want %q", tc.record, got, tc.want)
		}
	}
}

func TestComposeRequiresAllParts(t *testing.T) {
	compose := Compose(" ", []string{"nombre"}, []string{"apellido"})
	if got := compose(decodeRecord(t, `{"nombre": "Ana"}`)); got != "" {
		t.Fatalf("missing part must not compose, got %q", got)
	}
	if got := compose(decodeRecord(t, `{"nombre": "Ana", "apellido": "  "}`)); got != "" {
		t.Fatalf("blank part must not compose, got %q", got)
	}
	if got := compose(decodeRecord(t, `{"nombre": " Ana ", "apellido": "Ruiz"}`)); got != "Ana Ruiz" {
		t.Fatalf("compose should trim parts, got %q", got)
	}
}
