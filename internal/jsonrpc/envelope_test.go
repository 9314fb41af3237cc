package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustPayload(t *testing.T, raw string) Payload {
	t.Helper()
	p, err := CustomPayload([]byte(raw))
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}
	return p
}

func TestBuildIDPresenceInvariants(t *testing.T) {
	p := mustPayload(t, `{"method":"ping"}`)
	id := IntegerID(1)

	if _, err := NewRequest(p, &id); err != nil {
		t.Errorf("request with id should build: %v", err)
	}
	if _, err := NewRequest(p, nil); err == nil {
		t.Error("request without id must fail")
	}
	if _, err := NewNotification(p, nil); err != nil {
		t.Errorf("notification without id should build: %v", err)
	}
	if _, err := NewNotification(p, &id); err == nil {
		t.Error("notification with id must fail")
	}
	if _, err := NewResponse(mustPayload(t, `{}`), nil); err == nil {
		t.Error("response without id must fail")
	}
	if _, err := NewErrorMessage(NewInternalError(), nil); err == nil {
		t.Error("error message without id must fail")
	}
	if _, err := NewErrorMessage(nil, &id); err == nil {
		t.Error("error message without an error object must fail")
	}
}

func TestBuildFailuresAreInternalKind(t *testing.T) {
	_, err := NewRequest(mustPayload(t, `{"method":"ping"}`), nil)
	eo, ok := err.(*ErrorObject)
	if !ok || eo.Code != CodeInternalError {
		t.Errorf("construction failures must be internal-kind, got %v", err)
	}
}

func TestSerializeClassifyRoundTrip(t *testing.T) {
	id := IntegerID(7)
	p := mustPayload(t, `{"method":"tools/list","params":{}}`)

	req, err := NewRequest(p, &id)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	notif, err := NewNotification(mustPayload(t, `{"method":"notifications/cancelled"}`), nil)
	if err != nil {
		t.Fatalf("failed to build notification: %v", err)
	}
	resp, err := NewResponse(mustPayload(t, `{"tools":[]}`), &id)
	if err != nil {
		t.Fatalf("failed to build response: %v", err)
	}
	errMsg, err := NewErrorMessage(NewMethodNotFoundError(), &id)
	if err != nil {
		t.Fatalf("failed to build error message: %v", err)
	}

	// classify(serialize(e)) reproduces the original kind for all four.
	for _, m := range []Message{req, notif, resp, errMsg} {
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("failed to marshal %s: %v", m.Kind(), err)
		}
		if got := Classify(data); got != m.Kind() {
			t.Errorf("classify(serialize(%s)) = %s: %s", m.Kind(), got, data)
		}
	}
}

func TestRequestWireShape(t *testing.T) {
	id := IntegerID(1)
	req, err := NewRequest(mustPayload(t, `{"method":"ping"}`), &id)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"id":1,"jsonrpc":"2.0","method":"ping"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestDecodeRequestRoundTrip(t *testing.T) {
	raw := []byte(`{"id":5,"jsonrpc":"2.0","method":"echo","params":{"text":"hi"}}`)
	req, err := DecodeRequest(raw, testShapes())
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !req.ID.Equal(IntegerID(5)) {
		t.Errorf("expected id 5, got %s", req.ID.Key())
	}
	if !req.Payload.Known() || req.Method() != "echo" {
		t.Errorf("expected known echo payload, got known=%v method=%s", req.Payload.Known(), req.Method())
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	again, err := DecodeRequest(data, testShapes())
	if err != nil {
		t.Fatalf("failed to re-decode: %v", err)
	}
	if !again.ID.Equal(req.ID) || again.Method() != req.Method() {
		t.Error("round trip must preserve id and method")
	}
}

func TestDecodeRequestRejectsWrongJSONRPCConstant(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"id":1,"jsonrpc":"1.0","method":"ping"}`), testShapes())
	if err == nil {
		t.Fatal("expected decode to fail on jsonrpc 1.0")
	}
	msg := err.Error()
	for _, part := range []string{"jsonrpc", "2.0", "1.0", "Request"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error should name %q: %s", part, msg)
		}
	}
}

func TestDecodeRequestRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"jsonrpc":"2.0","method":"ping"}`},
		{"missing jsonrpc", `{"id":1,"method":"ping"}`},
		{"missing method", `{"id":1,"jsonrpc":"2.0"}`},
		{"unknown envelope field", `{"id":1,"jsonrpc":"2.0","method":"ping","surprise":1}`},
	}
	for _, tc := range cases {
		if _, err := DecodeRequest([]byte(tc.raw), testShapes()); err == nil {
			t.Errorf("%s: expected decode to fail", tc.name)
		}
	}
}

func TestDecodeNotification(t *testing.T) {
	n, err := DecodeNotification([]byte(`{"jsonrpc":"2.0","method":"ping"}`), testShapes())
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if n.Method() != "ping" || !n.Payload.Known() {
		t.Errorf("expected known ping notification, got method=%s known=%v", n.Method(), n.Payload.Known())
	}

	// An id on a notification is an unknown envelope field.
	if _, err := DecodeNotification([]byte(`{"id":1,"jsonrpc":"2.0","method":"ping"}`), testShapes()); err == nil {
		t.Error("expected notification with id to fail")
	}
}

func TestDecodeResponseAndError(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"id":"r1","jsonrpc":"2.0","result":{"tools":[]}}`), nil)
	if err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.ID.Equal(StringID("r1")) {
		t.Errorf("expected string id r1, got %s", resp.ID.Key())
	}
	if resp.Payload.Known() {
		t.Error("no result shapes were given, payload must be Custom")
	}

	if _, err := DecodeResponse([]byte(`{"id":1,"jsonrpc":"2.0"}`), nil); err == nil {
		t.Error("expected response without result to fail")
	}

	em, err := DecodeError([]byte(`{"id":1,"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"}}`))
	if err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if em.Err.Code != CodeMethodNotFound {
		t.Errorf("expected -32601, got %d", em.Err.Code)
	}
}

func TestDecodeMessageRoutesByKind(t *testing.T) {
	vocab := NewVocabulary(ProtocolVersion20250326)
	for _, s := range testShapes() {
		vocab.Register(ClientToServer, RoleRequest, s)
		vocab.Register(ClientToServer, RoleNotification, s)
	}

	cases := []struct {
		raw  string
		want MessageKind
	}{
		{`{"id":1,"jsonrpc":"2.0","method":"ping"}`, KindRequest},
		{`{"jsonrpc":"2.0","method":"ping"}`, KindNotification},
		{`{"id":1,"jsonrpc":"2.0","result":{}}`, KindResponse},
		{`{"id":1,"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"}}`, KindError},
	}
	for _, tc := range cases {
		m, err := DecodeMessage([]byte(tc.raw), vocab, ClientToServer)
		if err != nil {
			t.Fatalf("failed to decode %s: %v", tc.raw, err)
		}
		if m.Kind() != tc.want {
			t.Errorf("expected %s, got %s for %s", tc.want, m.Kind(), tc.raw)
		}
	}

	if _, err := DecodeMessage([]byte(`[]`), vocab, ClientToServer); err == nil {
		t.Error("expected non-object input to fail with a parse error")
	}
}

func TestNarrowing(t *testing.T) {
	id := IntegerID(1)
	req, _ := NewRequest(mustPayload(t, `{"method":"ping"}`), &id)
	notif, _ := NewNotification(mustPayload(t, `{"method":"ping"}`), nil)

	if _, err := AsRequest(req); err != nil {
		t.Errorf("narrowing to the actual kind should succeed: %v", err)
	}
	if _, err := AsNotification(notif); err != nil {
		t.Errorf("narrowing to the actual kind should succeed: %v", err)
	}

	_, err := AsResponse(req)
	if err == nil {
		t.Fatal("expected narrowing mismatch to fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"Response"`) || !strings.Contains(msg, `"Request"`) {
		t.Errorf("narrowing error should name expected and actual kind: %s", msg)
	}
	if _, err := AsError(notif); err == nil {
		t.Error("expected narrowing mismatch to fail")
	}
	if _, err := AsNotification(req); err == nil {
		t.Error("expected narrowing mismatch to fail")
	}
}
