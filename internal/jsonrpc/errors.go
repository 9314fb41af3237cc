// ABOUTME: JSON-RPC error object and the fixed error code catalogs
// ABOUTME: Standard 2.0 codes plus SDK extension codes with builder mutators

package jsonrpc

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// SDK extension error codes.
const (
	CodeConnectionClosed = -32000
	CodeRequestTimeout   = -32001
	CodeResourceNotFound = -32002
	CodeBadRequest       = -32015
	CodeSessionNotFound  = -32016
)

// ErrorObject is the structured error value shared by the error envelope
// and every failure the core reports.
type ErrorObject struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// WithMessage returns a copy with the message overridden.
func (e *ErrorObject) WithMessage(message string) *ErrorObject {
	clone := *e
	clone.Message = message
	return &clone
}

// WithData returns a copy with the data payload overridden.
func (e *ErrorObject) WithData(v interface{}) *ErrorObject {
	clone := *e
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal error data: %v", err)
		return &clone
	}
	clone.Data = data
	return &clone
}

func NewParseError() *ErrorObject {
	return &ErrorObject{Code: CodeParseError, Message: "Parse error"}
}

func NewInvalidRequestError() *ErrorObject {
	return &ErrorObject{Code: CodeInvalidRequest, Message: "Invalid request"}
}

func NewMethodNotFoundError() *ErrorObject {
	return &ErrorObject{Code: CodeMethodNotFound, Message: "Method not found"}
}

func NewInvalidParamsError() *ErrorObject {
	return &ErrorObject{Code: CodeInvalidParams, Message: "Invalid params"}
}

func NewInternalError() *ErrorObject {
	return &ErrorObject{Code: CodeInternalError, Message: "Internal error"}
}

func NewConnectionClosedError() *ErrorObject {
	return &ErrorObject{Code: CodeConnectionClosed, Message: "Connection closed"}
}

// NewRequestTimeoutError carries the elapsed timeout in milliseconds as data.
func NewRequestTimeoutError(timeout time.Duration) *ErrorObject {
	e := &ErrorObject{Code: CodeRequestTimeout, Message: "Request timeout"}
	return e.WithData(map[string]int64{"timeout": timeout.Milliseconds()})
}

func NewResourceNotFoundError() *ErrorObject {
	return &ErrorObject{Code: CodeResourceNotFound, Message: "Resource not found"}
}

func NewBadRequestError() *ErrorObject {
	return &ErrorObject{Code: CodeBadRequest, Message: "Bad request"}
}

func NewSessionNotFoundError() *ErrorObject {
	return &ErrorObject{Code: CodeSessionNotFound, Message: "Session not found"}
}

// NewConstFieldError reports a structurally matching payload whose constant
// field holds the wrong value, naming struct, field, expected and actual.
func NewConstFieldError(structName, field, expected, actual string) *ErrorObject {
	return NewInvalidRequestError().WithMessage(fmt.Sprintf(
		"expected field %q in struct %q to be constant %q, got %q",
		field, structName, expected, actual,
	))
}

func newNarrowingError(expected, actual MessageKind) *ErrorObject {
	return NewInternalError().WithMessage(fmt.Sprintf(
		"invalid message type: expected %q, received %q", expected, actual,
	))
}
