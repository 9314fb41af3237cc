package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestRequestIDEquality(t *testing.T) {
	if !IntegerID(42).Equal(IntegerID(42)) {
		t.Error("equal integer ids should compare equal")
	}
	if !StringID("abc").Equal(StringID("abc")) {
		t.Error("equal string ids should compare equal")
	}
	if IntegerID(1).Equal(IntegerID(2)) {
		t.Error("different integer ids should not compare equal")
	}
	// Cross-variant ids are never equal, even when they print the same.
	if IntegerID(1).Equal(StringID("1")) {
		t.Error("integer and string ids must never compare equal")
	}
	if (RequestID{}).Equal(RequestID{}) {
		t.Error("unset ids must never compare equal")
	}
}

func TestRequestIDKeyIsVariantPrefixed(t *testing.T) {
	if IntegerID(1).Key() == StringID("1").Key() {
		t.Error("map keys must distinguish integer and string variants")
	}
	if got := IntegerID(42).Key(); got != "i:42" {
		t.Errorf("expected i:42, got %s", got)
	}
	if got := StringID("abc").Key(); got != "s:abc" {
		t.Errorf("expected s:abc, got %s", got)
	}
}

func TestRequestIDJSON(t *testing.T) {
	data, err := json.Marshal(IntegerID(7))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != "7" {
		t.Errorf("expected 7, got %s", data)
	}

	data, err = json.Marshal(StringID("req-1"))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != `"req-1"` {
		t.Errorf("expected \"req-1\", got %s", data)
	}

	var id RequestID
	if err := json.Unmarshal([]byte("42"), &id); err != nil {
		t.Fatalf("failed to unmarshal integer id: %v", err)
	}
	if !id.Equal(IntegerID(42)) {
		t.Errorf("expected IntegerID(42), got %s", id.Key())
	}

	if err := json.Unmarshal([]byte(`"abc"`), &id); err != nil {
		t.Fatalf("failed to unmarshal string id: %v", err)
	}
	if !id.Equal(StringID("abc")) {
		t.Errorf("expected StringID(abc), got %s", id.Key())
	}
}

func TestRequestIDRejectsOtherTypes(t *testing.T) {
	for _, raw := range []string{"true", "1.5", `{"a":1}`, "[1]"} {
		var id RequestID
		if err := json.Unmarshal([]byte(raw), &id); err == nil {
			t.Errorf("expected unmarshal of %s to fail", raw)
		}
	}
}

func TestUnsetRequestIDMarshalFails(t *testing.T) {
	var id RequestID
	if _, err := id.MarshalJSON(); err == nil {
		t.Error("expected marshal of unset id to fail")
	}
}
