package jsonrpc

import (
	"bytes"
	"strings"
	"testing"
)

// Test shapes standing in for the generated vocabulary.

type pingCall struct {
	Method string    `json:"method"`
	Params *struct{} `json:"params,omitempty"`
}

func (p *pingCall) Validate() error {
	if p.Method != "ping" {
		return NewConstFieldError("pingCall", "method", "ping", p.Method)
	}
	return nil
}

type echoCall struct {
	Method string `json:"method"`
	Params struct {
		Text string `json:"text"`
	} `json:"params"`
}

func (e *echoCall) Validate() error {
	if e.Method != "echo" {
		return NewConstFieldError("echoCall", "method", "echo", e.Method)
	}
	return nil
}

// greedyCall structurally matches any {method, params} object; used to
// prove declaration order is the tie-break.
type greedyCall struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

func testShapes() []Shape {
	return []Shape{
		{Method: "ping", New: func() interface{} { return &pingCall{} }},
		{Method: "echo", New: func() interface{} { return &echoCall{} }},
	}
}

func TestResolveKnownShape(t *testing.T) {
	p, err := Resolve([]byte(`{"method":"ping"}`), testShapes())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !p.Known() {
		t.Fatal("expected a Known payload")
	}
	if _, ok := p.Value().(*pingCall); !ok {
		t.Fatalf("expected *pingCall, got %T", p.Value())
	}
	if p.Method() != "ping" {
		t.Errorf("expected method ping, got %s", p.Method())
	}
}

func TestResolveSecondCandidate(t *testing.T) {
	p, err := Resolve([]byte(`{"method":"echo","params":{"text":"hi"}}`), testShapes())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	call, ok := p.Value().(*echoCall)
	if !ok {
		t.Fatalf("expected *echoCall, got %T", p.Value())
	}
	if call.Params.Text != "hi" {
		t.Errorf("expected params to decode, got %q", call.Params.Text)
	}
}

func TestResolveUnknownMethodFallsBackToCustom(t *testing.T) {
	raw := []byte(`{"method":"x/unknownMethod","params":{}}`)
	p, err := Resolve(raw, testShapes())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Known() {
		t.Fatal("expected a Custom payload for an unknown method")
	}
	// Forward-compatibility path: the JSON comes back untouched.
	if !bytes.Equal(p.Raw(), raw) {
		t.Errorf("custom payload must preserve the input byte-for-byte: %s", p.Raw())
	}
	if p.Method() != "x/unknownMethod" {
		t.Errorf("expected probed method, got %s", p.Method())
	}
}

func TestResolveConstFieldMismatchAdvancesSearch(t *testing.T) {
	// Structurally pingCall (no params) but the const method differs, so
	// the candidate loses and resolution falls through to Custom.
	p, err := Resolve([]byte(`{"method":"pong"}`), testShapes())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Known() {
		t.Error("const mismatch must not produce a Known payload")
	}
}

func TestResolveUnknownFieldsRejectCandidate(t *testing.T) {
	// Extra field rules out the closed shape.
	p, err := Resolve([]byte(`{"method":"ping","extra":true}`), testShapes())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Known() {
		t.Error("unknown fields must rule out a closed shape")
	}
}

func TestResolveDeclarationOrderTieBreak(t *testing.T) {
	shapes := []Shape{
		{Method: "echo", New: func() interface{} { return &greedyCall{} }},
		{Method: "echo", New: func() interface{} { return &echoCall{} }},
	}
	p, err := Resolve([]byte(`{"method":"echo","params":{"text":"hi"}}`), shapes)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := p.Value().(*greedyCall); !ok {
		t.Fatalf("first matching candidate must win, got %T", p.Value())
	}
}

func TestResolveNonObjectIsParseError(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"str"`, `42`, `not json`} {
		_, err := Resolve([]byte(raw), testShapes())
		if err == nil {
			t.Errorf("expected parse error for %s", raw)
			continue
		}
		eo, ok := err.(*ErrorObject)
		if !ok || eo.Code != CodeParseError {
			t.Errorf("expected parse-kind error for %s, got %v", raw, err)
		}
	}
}

func TestResolveEmptyVocabulary(t *testing.T) {
	p, err := Resolve([]byte(`{"method":"ping"}`), nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Known() {
		t.Error("empty vocabulary can only yield Custom")
	}
}

func TestKnownPayloadFromValue(t *testing.T) {
	p, err := KnownPayload(&pingCall{Method: "ping"})
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}
	if !p.Known() || p.Method() != "ping" {
		t.Errorf("expected known ping payload, got known=%v method=%s", p.Known(), p.Method())
	}
	if p.Params() != nil {
		t.Errorf("expected no params, got %s", p.Params())
	}
}

func TestCustomPayloadRejectsNonObject(t *testing.T) {
	if _, err := CustomPayload([]byte(`[1]`)); err == nil {
		t.Error("expected custom payload of a non-object to fail")
	}
	if !strings.Contains(func() string {
		_, err := CustomPayload([]byte(`42`))
		return err.Error()
	}(), "not a JSON object") {
		t.Error("expected descriptive parse error")
	}
}

func TestVocabularyRegistrationOrder(t *testing.T) {
	v := NewVocabulary(ProtocolVersion20250326)
	v.Register(ClientToServer, RoleRequest, Shape{Method: "a", New: func() interface{} { return &pingCall{} }})
	v.Register(ClientToServer, RoleRequest, Shape{Method: "b", New: func() interface{} { return &echoCall{} }})

	shapes := v.Shapes(ClientToServer, RoleRequest)
	if len(shapes) != 2 || shapes[0].Method != "a" || shapes[1].Method != "b" {
		t.Errorf("registration order must be preserved: %+v", shapes)
	}
	if len(v.Shapes(ServerToClient, RoleRequest)) != 0 {
		t.Error("directions must not share shape lists")
	}
	if v.Version() != ProtocolVersion20250326 {
		t.Errorf("expected version 2025-03-26, got %s", v.Version())
	}
}
