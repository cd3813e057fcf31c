package collection

import (
	"encoding/json"
	"testing"
)

func TestModeJSONRoundTrip(t *testing.T) {
	cases := []Mode{
		Closed(),
		Creating(),
		Viewing("u-3"),
		Editing("u-3"),
		ConfirmingDelete("u-3"),
	}
	for _, mode := range cases {
		data, err := json.Marshal(mode)
		if err != nil {
			t.Fatalf("marshal %v: %v", mode.Kind(), err)
		}
		var restored Mode
		if err := json.Unmarshal(data, &restored); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if restored.Kind() != mode.Kind() {
			t.Fatalf("kind lost: %v vs %v", restored.Kind(), mode.Kind())
		}
		wantID, wantOK := mode.EntityID()
		gotID, gotOK := restored.EntityID()
		if wantID != gotID || wantOK != gotOK {
			t.Fatalf("entity reference lost for %v", mode.Kind())
		}
	}
}

func TestModeRejectsImpossibleStates(t *testing.T) {
	cases := []string{
		`{"mode":"editing"}`,
		`{"mode":"confirming_delete"}`,
		`{"mode":"closed","id":"u-1"}`,
		`{"mode":"exploded"}`,
	}
	for _, raw := range cases {
		var m Mode
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
}

func TestZeroModeIsClosed(t *testing.T) {
	var m Mode
	if m.Kind() != ModeClosed {
		t.Fatalf("zero mode should be closed, got %v", m.Kind())
	}
	if _, ok := m.EntityID(); ok {
		t.Fatalf("closed mode should not reference an entity")
	}
}
