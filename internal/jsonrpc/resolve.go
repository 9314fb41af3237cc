// ABOUTME: Variant resolution of raw payloads against a closed vocabulary
// ABOUTME: Ordered first-match-wins with an opaque Custom fallback

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Direction tells which peer produced a message.
type Direction int

const (
	ClientToServer Direction = iota
	ServerToClient
)

func (d Direction) String() string {
	if d == ServerToClient {
		return "server_to_client"
	}
	return "client_to_server"
}

// Role is the part a payload plays inside its envelope.
type Role int

const (
	RoleRequest Role = iota
	RoleNotification
	RoleResult
)

// Validator is implemented by vocabulary shapes that carry constant
// fields; Validate rejects a structurally matching payload whose
// constants hold the wrong values.
type Validator interface {
	Validate() error
}

// Shape is one entry of the payload vocabulary: a fixed method name and
// a constructor for the struct the payload decodes into. Method is empty
// for result shapes, which carry no method on the wire.
type Shape struct {
	Method string
	New    func() interface{}
}

func (s Shape) decode(raw json.RawMessage) (interface{}, error) {
	v := s.New()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	if cv, ok := v.(Validator); ok {
		if err := cv.Validate(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Vocabulary is the closed, ordered table of known payload shapes for one
// protocol version. Declaration order is the resolution tie-break, so
// registration order matters.
type Vocabulary struct {
	version ProtocolVersion
	shapes  map[Direction]map[Role][]Shape
}

func NewVocabulary(version ProtocolVersion) *Vocabulary {
	return &Vocabulary{
		version: version,
		shapes: map[Direction]map[Role][]Shape{
			ClientToServer: {},
			ServerToClient: {},
		},
	}
}

func (v *Vocabulary) Version() ProtocolVersion {
	return v.version
}

// Register appends a shape to the candidate list for (direction, role).
func (v *Vocabulary) Register(d Direction, r Role, s Shape) {
	v.shapes[d][r] = append(v.shapes[d][r], s)
}

// Shapes returns the ordered candidate list for (direction, role).
func (v *Vocabulary) Shapes(d Direction, r Role) []Shape {
	return v.shapes[d][r]
}

// Payload is the resolved method-specific content of a message: either a
// Known vocabulary shape or an opaque Custom value kept for forward
// compatibility with methods this build does not know.
type Payload struct {
	raw    json.RawMessage
	value  interface{}
	method string
	params json.RawMessage
	known  bool
}

// Known reports whether the payload matched a vocabulary shape.
func (p Payload) Known() bool { return p.known }

// Value returns the decoded shape struct, nil for Custom payloads.
func (p Payload) Value() interface{} { return p.value }

// Method returns the wire method, empty for result payloads.
func (p Payload) Method() string { return p.method }

// Params returns the raw params object, nil when absent.
func (p Payload) Params() json.RawMessage { return p.params }

// Raw returns the payload JSON exactly as it arrived. For Custom payloads
// this is byte-for-byte the input that failed to match.
func (p Payload) Raw() json.RawMessage { return p.raw }

// KnownPayload builds an outgoing payload from a vocabulary shape value.
// The value is serialized immediately, so the shape's constant fields
// must already be set (use the vocabulary's constructors).
func KnownPayload(v interface{}) (Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	method, params := probePayload(raw)
	return Payload{raw: raw, value: v, method: method, params: params, known: true}, nil
}

// CustomPayload builds an outgoing payload from raw JSON, bypassing the
// vocabulary. The bytes are kept untouched.
func CustomPayload(raw json.RawMessage) (Payload, error) {
	if !isJSONObject(raw) {
		return Payload{}, NewParseError().WithMessage("payload is not a JSON object")
	}
	method, params := probePayload(raw)
	return Payload{raw: raw, method: method, params: params}, nil
}

// Resolve matches a raw payload against the candidate shapes in
// declaration order. A candidate wins only if it decodes without
// structural error and its constant fields validate; the first winner
// stops the search. Exhaustion is not an error: the payload comes back
// as Custom with the input JSON untouched. Only a non-object input fails,
// with a Parse-kind error.
func Resolve(raw json.RawMessage, shapes []Shape) (Payload, error) {
	if !isJSONObject(raw) {
		return Payload{}, NewParseError().WithMessage("payload is not a JSON object")
	}
	method, params := probePayload(raw)
	for _, s := range shapes {
		v, err := s.decode(raw)
		if err != nil {
			continue
		}
		return Payload{raw: raw, value: v, method: method, params: params, known: true}, nil
	}
	return Payload{raw: raw, method: method, params: params}, nil
}

func probePayload(raw json.RawMessage) (method string, params json.RawMessage) {
	var probe struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	// Best effort: raw is already known to be an object.
	_ = json.Unmarshal(raw, &probe)
	return probe.Method, probe.Params
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(raw)
}
