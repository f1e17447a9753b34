package prometheus

import (
	"encoding/json"
	"testing"
	"time"
)

func decodeResponse(t *testing.T, body string) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return resp
}

const twoNamespaceBody = `{
	"status": "success",
	"data": {
		"resultType": "vector",
		"result": [
			{"metric": {"namespace": "prod", "username": "alice"}, "value": [1700000000, "214748364800"]},
			{"metric": {"namespace": "staging", "username": "alice"}, "value": [1700000000, "10737418240"]}
		]
	}
}`

func TestSelectValue_PicksConfiguredNamespace(t *testing.T) {
	resp := decodeResponse(t, twoNamespaceBody)

	got, ok := SelectValue(resp, "staging")
	if !ok {
		t.Fatal("expected a match for staging")
	}
	if got != 10737418240 {
		t.Errorf("value = %d, want the 10 GiB staging row, not the 200 GiB prod row", got)
	}

	got, ok = SelectValue(resp, "prod")
	if !ok || got != 214748364800 {
		t.Errorf("prod value = %d ok=%v, want 214748364800", got, ok)
	}
}

func TestSelectValue_Deterministic(t *testing.T) {
	resp := decodeResponse(t, twoNamespaceBody)

	first, ok := SelectValue(resp, "staging")
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 10; i++ {
		got, ok := SelectValue(resp, "staging")
		if !ok || got != first {
			t.Fatalf("call %d: value = %d ok=%v, want %d", i, got, ok, first)
		}
	}
}

func TestSelectValue_DuplicateNamespaceFirstWins(t *testing.T) {
	resp := decodeResponse(t, `{
		"status": "success",
		"data": {"resultType": "vector", "result": [
			{"metric": {"namespace": "prod"}, "value": [1700000000, "111"]},
			{"metric": {"namespace": "prod"}, "value": [1700000000, "222"]}
		]}
	}`)

	got, ok := SelectValue(resp, "prod")
	if !ok || got != 111 {
		t.Errorf("value = %d ok=%v, want first row 111", got, ok)
	}
}

func TestSelectValue_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error status", `{"status": "error", "data": {"result": [
			{"metric": {"namespace": "prod"}, "value": [1700000000, "1"]}]}}`},
		{"empty result", `{"status": "success", "data": {"resultType": "vector", "result": []}}`},
		{"absent result", `{"status": "success", "data": {}}`},
		{"no namespace match", `{"status": "success", "data": {"result": [
			{"metric": {"namespace": "other"}, "value": [1700000000, "1"]}]}}`},
		{"missing namespace label", `{"status": "success", "data": {"result": [
			{"metric": {"pod": "x"}, "value": [1700000000, "1"]}]}}`},
		{"short value pair", `{"status": "success", "data": {"result": [
			{"metric": {"namespace": "prod"}, "value": [1700000000]}]}}`},
		{"long value pair", `{"status": "success", "data": {"result": [
			{"metric": {"namespace": "prod"}, "value": [1700000000, "1", "extra"]}]}}`},
		{"non-numeric value", `{"status": "success", "data": {"result": [
			{"metric": {"namespace": "prod"}, "value": [1700000000, "not-a-number"]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeResponse(t, tt.body)
			if v, ok := SelectValue(resp, "prod"); ok {
				t.Errorf("SelectValue = %d, want no match", v)
			}
			if ts, ok := SelectTimestamp(resp, "prod"); ok {
				t.Errorf("SelectTimestamp = %v, want no match", ts)
			}
		})
	}
}

func TestSelectValue_TruncatesFloat(t *testing.T) {
	resp := decodeResponse(t, `{"status": "success", "data": {"result": [
		{"metric": {"namespace": "prod"}, "value": [1700000000, "1073741824.9"]}]}}`)

	got, ok := SelectValue(resp, "prod")
	if !ok || got != 1073741824 {
		t.Errorf("value = %d ok=%v, want 1073741824", got, ok)
	}
}

func TestSelectTimestamp(t *testing.T) {
	resp := decodeResponse(t, `{"status": "success", "data": {"result": [
		{"metric": {"namespace": "prod"}, "value": [1700000100, "1700000000.25"]}]}}`)

	got, ok := SelectTimestamp(resp, "prod")
	if !ok {
		t.Fatal("expected a match")
	}
	want := time.Unix(1700000000, 250000000).UTC()
	if !got.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
}
