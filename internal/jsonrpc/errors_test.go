package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestErrorCatalogCodes(t *testing.T) {
	cases := []struct {
		err  *ErrorObject
		code int64
		msg  string
	}{
		{NewParseError(), -32700, "Parse error"},
		{NewInvalidRequestError(), -32600, "Invalid request"},
		{NewMethodNotFoundError(), -32601, "Method not found"},
		{NewInvalidParamsError(), -32602, "Invalid params"},
		{NewInternalError(), -32603, "Internal error"},
		{NewConnectionClosedError(), -32000, "Connection closed"},
		{NewResourceNotFoundError(), -32002, "Resource not found"},
		{NewBadRequestError(), -32015, "Bad request"},
		{NewSessionNotFoundError(), -32016, "Session not found"},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %d, got %d", tc.code, tc.err.Code)
		}
		if tc.err.Message != tc.msg {
			t.Errorf("expected message %q, got %q", tc.msg, tc.err.Message)
		}
	}
}

func TestRequestTimeoutCarriesTimeoutData(t *testing.T) {
	e := NewRequestTimeoutError(5 * time.Second)
	if e.Code != -32001 {
		t.Errorf("expected code -32001, got %d", e.Code)
	}
	var data struct {
		Timeout int64 `json:"timeout"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}
	if data.Timeout != 5000 {
		t.Errorf("expected timeout 5000ms, got %d", data.Timeout)
	}
}

func TestBuilderMutatorsDoNotMutateOriginal(t *testing.T) {
	base := NewInternalError()
	modified := base.WithMessage("something broke").WithData(map[string]string{"op": "resolve"})

	if base.Message != "Internal error" || base.Data != nil {
		t.Error("WithMessage/WithData must not mutate the original error")
	}
	if modified.Message != "something broke" {
		t.Errorf("expected overridden message, got %q", modified.Message)
	}
	if modified.Code != base.Code {
		t.Errorf("expected code to carry over, got %d", modified.Code)
	}
	if modified.Data == nil {
		t.Error("expected data to be set")
	}
}

func TestConstFieldErrorNamesEverything(t *testing.T) {
	e := NewConstFieldError("PingRequest", "jsonrpc", "2.0", "1.0")
	for _, part := range []string{"PingRequest", "jsonrpc", "2.0", "1.0"} {
		if !strings.Contains(e.Message, part) {
			t.Errorf("const field error should mention %q: %s", part, e.Message)
		}
	}
	if e.Code != CodeInvalidRequest {
		t.Errorf("expected invalid request code, got %d", e.Code)
	}
}

func TestErrorObjectJSONShape(t *testing.T) {
	e := NewMethodNotFoundError()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"code":-32601,"message":"Method not found"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestErrorObjectImplementsError(t *testing.T) {
	var err error = NewParseError()
	if !strings.Contains(err.Error(), "-32700") {
		t.Errorf("Error() should include the code: %s", err.Error())
	}
}
