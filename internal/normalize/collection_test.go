package normalize

import (
	"encoding/json"
	"testing"
)

func decodePayload(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode payload fixture: %v", err)
	}
	return payload
}

func TestLocateCollectionShapeProbes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantLen int
		wantOK  bool
	}{
		{"bare array", `[{"a":1},{"a":2}]`, 2, true},
		{"data wrapper", `{"data": [{"a":1}]}`, 1, true},
		{"domain key", `{"pagos": [{"a":1},{"a":2},{"a":3}]}`, 3, true},
		{"nested data domain key", `{"data": {"pagos": [{"a":1}]}}`, 1, true},
		{"empty but recognized", `{"pagos": []}`, 0, true},
		{"unknown wrapper", `{"resultado": {"items": [1]}}`, 0, false},
		{"scalar payload", `42`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			arr, ok := LocateCollection(decodePayload(t, tc.payload), "pagos", "payments")
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && len(arr) != tc.wantLen {
				t.Fatalf("len = %d, want %d", len(arr), tc.wantLen)
			}
		})
	}
}

func TestLocateCollectionProbeOrder(t *testing.T) {
	// data wins over domain keys when both are present.
	payload := decodePayload(t, `{"data": [{"src":"data"}], "pagos": [{"src":"pagos"}]}`)
	arr, ok := LocateCollection(payload, "pagos")
	if !ok || len(arr) != 1 {
		t.Fatalf("expected one element, ok=%v", ok)
	}
	if arr[0].(map[string]any)["src"] != "data" {
		t.Fatal("data probe must run before domain-key probes")
	}
}

func TestDeepScanCollection(t *testing.T) {
	payload := decodePayload(t, `{"resultado": {"filas": [{"a":1}], "meta": {"count": 1}}}`)
	arr, ok := DeepScanCollection(payload)
	if !ok || len(arr) != 1 {
		t.Fatalf("depth-2 array should be found, ok=%v", ok)
	}

	// Empty arrays do not count as data.
	if _, ok := DeepScanCollection(decodePayload(t, `{"filas": []}`)); ok {
		t.Fatal("empty array is not a deep-scan hit")
	}

	// Depth 3 is out of bounds.
	if _, ok := DeepScanCollection(decodePayload(t, `{"a": {"b": {"c": [1]}}}`)); ok {
		t.Fatal("depth-3 array must not be found")
	}

	if _, ok := DeepScanCollection(decodePayload(t, `{"x": 1, "y": "z"}`)); ok {
		t.Fatal("record with no array anywhere yields no data")
	}
}

func TestDeepScanCollectionIsDeterministic(t *testing.T) {
	// Two same-level arrays: the scan picks by sorted key so repeated runs
	// agree.
	payload := decodePayload(t, `{"zetas": [{"src":"z"}], "alfas": [{"src":"a"}]}`)
	for i := 0; i < 10; i++ {
		arr, ok := DeepScanCollection(payload)
		if !ok {
			t.Fatal("expected a hit")
		}
		if arr[0].(map[string]any)["src"] != "a" {
			t.Fatal("deep scan must visit keys in sorted order")
		}
	}
}
