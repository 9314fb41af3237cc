// ABOUTME: The four JSON-RPC envelope types with build and extract rules
// ABOUTME: Enforces id-presence invariants and the jsonrpc "2.0" constant

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the constant jsonrpc marker every envelope carries.
const Version = "2.0"

// Message is one of the four envelope types: *Request, *Notification,
// *Response or *ErrorMessage.
type Message interface {
	json.Marshaler
	Kind() MessageKind
}

// Request is a correlated call: id always present, expects a reply.
type Request struct {
	ID      RequestID
	Payload Payload
}

// Notification is a fire-and-forget call: id never present.
type Notification struct {
	Payload Payload
}

// Response carries the result payload for an earlier request.
type Response struct {
	ID      RequestID
	Payload Payload
}

// ErrorMessage reports a failure for an earlier request.
type ErrorMessage struct {
	ID  RequestID
	Err ErrorObject
}

// NewRequest builds a request envelope. The id is required; building
// without one is a construction error.
func NewRequest(p Payload, id *RequestID) (*Request, error) {
	if id == nil || !id.Valid() {
		return nil, NewInternalError().WithMessage("request id is required for a Request message")
	}
	return &Request{ID: *id, Payload: p}, nil
}

// NewNotification builds a notification envelope. Passing an id is a
// construction error: notifications are never correlated.
func NewNotification(p Payload, id *RequestID) (*Notification, error) {
	if id != nil {
		return nil, NewInternalError().WithMessage("request id must be absent for a Notification message")
	}
	return &Notification{Payload: p}, nil
}

// NewResponse builds a response envelope. The id is required.
func NewResponse(p Payload, id *RequestID) (*Response, error) {
	if id == nil || !id.Valid() {
		return nil, NewInternalError().WithMessage("request id is required for a Response message")
	}
	return &Response{ID: *id, Payload: p}, nil
}

// NewErrorMessage builds an error envelope. The id is required.
func NewErrorMessage(e *ErrorObject, id *RequestID) (*ErrorMessage, error) {
	if id == nil || !id.Valid() {
		return nil, NewInternalError().WithMessage("request id is required for an Error message")
	}
	if e == nil {
		return nil, NewInternalError().WithMessage("error object is required for an Error message")
	}
	return &ErrorMessage{ID: *id, Err: *e}, nil
}

func (r *Request) Kind() MessageKind      { return KindRequest }
func (n *Notification) Kind() MessageKind { return KindNotification }
func (r *Response) Kind() MessageKind     { return KindResponse }
func (e *ErrorMessage) Kind() MessageKind { return KindError }

// Method returns the wire method of the request payload.
func (r *Request) Method() string { return r.Payload.Method() }

// Method returns the wire method of the notification payload.
func (n *Notification) Method() string { return n.Payload.Method() }

func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      RequestID       `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}{r.ID, Version, r.Payload.Method(), r.Payload.Params()})
}

func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}{Version, n.Payload.Method(), n.Payload.Params()})
}

func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      RequestID       `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}{r.ID, Version, r.Payload.Raw()})
}

func (e *ErrorMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      RequestID   `json:"id"`
		JSONRPC string      `json:"jsonrpc"`
		Error   ErrorObject `json:"error"`
	}{e.ID, Version, e.Err})
}

// AsRequest narrows a message to a request, failing with an error that
// names both the expected and the actual kind.
func AsRequest(m Message) (*Request, error) {
	if r, ok := m.(*Request); ok {
		return r, nil
	}
	return nil, newNarrowingError(KindRequest, m.Kind())
}

// AsNotification narrows a message to a notification.
func AsNotification(m Message) (*Notification, error) {
	if n, ok := m.(*Notification); ok {
		return n, nil
	}
	return nil, newNarrowingError(KindNotification, m.Kind())
}

// AsResponse narrows a message to a response.
func AsResponse(m Message) (*Response, error) {
	if r, ok := m.(*Response); ok {
		return r, nil
	}
	return nil, newNarrowingError(KindResponse, m.Kind())
}

// AsError narrows a message to an error envelope.
func AsError(m Message) (*ErrorMessage, error) {
	if e, ok := m.(*ErrorMessage); ok {
		return e, nil
	}
	return nil, newNarrowingError(KindError, m.Kind())
}

// DecodeMessage classifies raw bytes and decodes them into the matching
// envelope, resolving the payload against the vocabulary for the given
// direction. Unrecognized methods come back as Custom payloads.
func DecodeMessage(raw []byte, vocab *Vocabulary, dir Direction) (Message, error) {
	if !isJSONObject(raw) {
		return nil, NewParseError().WithMessage("message is not a JSON object")
	}
	switch Classify(raw) {
	case KindError:
		return DecodeError(raw)
	case KindResponse:
		return DecodeResponse(raw, vocab.Shapes(dir, RoleResult))
	case KindNotification:
		return DecodeNotification(raw, vocab.Shapes(dir, RoleNotification))
	default:
		return DecodeRequest(raw, vocab.Shapes(dir, RoleRequest))
	}
}

// DecodeRequest decodes a request envelope. Unknown envelope fields are
// rejected; id, jsonrpc and method are required; params defaults to
// absent. The payload is resolved against the candidate shapes.
func DecodeRequest(raw []byte, shapes []Shape) (*Request, error) {
	var wire struct {
		ID      RequestID       `json:"id"`
		JSONRPC *string         `json:"jsonrpc"`
		Method  *string         `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := decodeStrict(raw, &wire); err != nil {
		return nil, NewInvalidRequestError().WithMessage(fmt.Sprintf("invalid Request envelope: %v", err))
	}
	if !wire.ID.Valid() {
		return nil, NewInvalidRequestError().WithMessage(`missing required field "id" in struct "Request"`)
	}
	if err := checkEnvelopeConstants("Request", wire.JSONRPC, wire.Method); err != nil {
		return nil, err
	}
	p, err := resolveCall(*wire.Method, wire.Params, shapes)
	if err != nil {
		return nil, err
	}
	return &Request{ID: wire.ID, Payload: p}, nil
}

// DecodeNotification decodes a notification envelope.
func DecodeNotification(raw []byte, shapes []Shape) (*Notification, error) {
	var wire struct {
		JSONRPC *string         `json:"jsonrpc"`
		Method  *string         `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := decodeStrict(raw, &wire); err != nil {
		return nil, NewInvalidRequestError().WithMessage(fmt.Sprintf("invalid Notification envelope: %v", err))
	}
	if err := checkEnvelopeConstants("Notification", wire.JSONRPC, wire.Method); err != nil {
		return nil, err
	}
	p, err := resolveCall(*wire.Method, wire.Params, shapes)
	if err != nil {
		return nil, err
	}
	return &Notification{Payload: p}, nil
}

// DecodeResponse decodes a response envelope and resolves the bare result
// object against the result shapes.
func DecodeResponse(raw []byte, shapes []Shape) (*Response, error) {
	var wire struct {
		ID      RequestID       `json:"id"`
		JSONRPC *string         `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}
	if err := decodeStrict(raw, &wire); err != nil {
		return nil, NewInvalidRequestError().WithMessage(fmt.Sprintf("invalid Response envelope: %v", err))
	}
	if !wire.ID.Valid() {
		return nil, NewInvalidRequestError().WithMessage(`missing required field "id" in struct "Response"`)
	}
	if err := checkEnvelopeConstants("Response", wire.JSONRPC, nil); err != nil {
		return nil, err
	}
	if wire.Result == nil {
		return nil, NewInvalidRequestError().WithMessage(`missing required field "result" in struct "Response"`)
	}
	p, err := Resolve(wire.Result, shapes)
	if err != nil {
		return nil, err
	}
	return &Response{ID: wire.ID, Payload: p}, nil
}

// DecodeError decodes an error envelope. No vocabulary is involved: the
// error object shape is fixed.
func DecodeError(raw []byte) (*ErrorMessage, error) {
	var wire struct {
		ID      RequestID    `json:"id"`
		JSONRPC *string      `json:"jsonrpc"`
		Error   *ErrorObject `json:"error"`
	}
	if err := decodeStrict(raw, &wire); err != nil {
		return nil, NewInvalidRequestError().WithMessage(fmt.Sprintf("invalid Error envelope: %v", err))
	}
	if !wire.ID.Valid() {
		return nil, NewInvalidRequestError().WithMessage(`missing required field "id" in struct "Error"`)
	}
	if err := checkEnvelopeConstants("Error", wire.JSONRPC, nil); err != nil {
		return nil, err
	}
	if wire.Error == nil {
		return nil, NewInvalidRequestError().WithMessage(`missing required field "error" in struct "Error"`)
	}
	return &ErrorMessage{ID: wire.ID, Err: *wire.Error}, nil
}

// resolveCall composes the {method, params} object the resolver matches
// against, mirroring how the payload left the sender.
func resolveCall(method string, params json.RawMessage, shapes []Shape) (Payload, error) {
	composed, err := json.Marshal(struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params,omitempty"`
	}{method, params})
	if err != nil {
		return Payload{}, NewInternalError().WithMessage(err.Error())
	}
	return Resolve(composed, shapes)
}

func checkEnvelopeConstants(structName string, jsonrpc, method *string) *ErrorObject {
	if jsonrpc == nil {
		return NewInvalidRequestError().WithMessage(fmt.Sprintf("missing required field %q in struct %q", "jsonrpc", structName))
	}
	if *jsonrpc != Version {
		return NewConstFieldError(structName, "jsonrpc", Version, *jsonrpc)
	}
	if method == nil && (structName == "Request" || structName == "Notification") {
		return NewInvalidRequestError().WithMessage(fmt.Sprintf("missing required field %q in struct %q", "method", structName))
	}
	return nil
}

func decodeStrict(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
