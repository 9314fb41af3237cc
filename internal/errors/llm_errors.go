// ABOUTME: LLM-optimized error messages with explanations and suggested actions
// ABOUTME: Provides verbose, actionable error context for AI agents

package errors

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type LLMErrorData struct {
	ErrorType        string                 `json:"error_type"`
	Explanation      string                 `json:"explanation"`
	PossibleCauses   []string               `json:"possible_causes,omitempty"`
	SuggestedActions []string               `json:"suggested_actions,omitempty"`
	RelevantState    map[string]interface{} `json:"relevant_state,omitempty"`
	Recoverable      bool                   `json:"recoverable"`
	Details          string                 `json:"details,omitempty"`
}

func buildError(code int64, message string, data LLMErrorData) *jsonrpc.ErrorObject {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal error data: %v", err)
		dataBytes = []byte("{}")
	}

	return &jsonrpc.ErrorObject{
		Code:    code,
		Message: message,
		Data:    dataBytes,
	}
}

func NewServerConnectionError(serverCommand string, attempts int, durationMs int, details string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"I attempted to spawn the MCP server process but it failed to start within %dms. "+
			"This typically means the server command is incorrect, the server binary is missing, "+
			"or the server encountered an error during startup.",
		durationMs,
	)

	return buildError(jsonrpc.CodeConnectionClosed, message, LLMErrorData{
		ErrorType:   "server_connection_timeout",
		Explanation: "The relay tried to start the MCP server subprocess but it did not become ready within the configured timeout.",
		PossibleCauses: []string{
			"The server command path is incorrect or the binary doesn't exist",
			"The server requires environment variables that aren't set",
			"The server crashed immediately on startup",
			"The server is waiting for input but the relay hasn't sent the initialize request",
		},
		SuggestedActions: []string{
			"Check that the server command exists: ls -l /path/to/server",
			"Verify the server can run manually: /path/to/server --help",
			"Check the relay's stderr logs for server error messages",
			"Ensure required environment variables are set in config.yaml",
		},
		RelevantState: map[string]interface{}{
			"server_command": serverCommand,
			"attempts":       attempts,
			"timeout_ms":     durationMs,
		},
		Recoverable: true,
		Details:     details,
	})
}

func NewSessionNotFoundError(sessionID string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"The session '%s' does not exist. This means the session was never created, "+
			"it expired due to inactivity, or the MCP server process crashed and was cleaned up.",
		sessionID,
	)

	return buildError(jsonrpc.CodeSessionNotFound, message, LLMErrorData{
		ErrorType:   "session_not_found",
		Explanation: "The relay doesn't have an active session with this ID.",
		PossibleCauses: []string{
			"The session was never created (missing session/new call)",
			"The session ID was mistyped or corrupted",
			"The session expired due to inactivity timeout",
			"The MCP server process crashed and the session was cleaned up",
		},
		SuggestedActions: []string{
			"Create a new session using session/new",
			"Verify you're using the correct session ID from the session/new response",
			"Check if the MCP server process is still running",
		},
		RelevantState: map[string]interface{}{
			"session_id": sessionID,
		},
		Recoverable: true,
	})
}

func NewInvalidParamsError(paramName string, expectedType string, receivedValue string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"The parameter '%s' is invalid. I expected a %s but received: %s. "+
			"Please check the API documentation and ensure all required parameters are included with correct types.",
		paramName, expectedType, receivedValue,
	)

	return buildError(jsonrpc.CodeInvalidParams, message, LLMErrorData{
		ErrorType:   "invalid_params",
		Explanation: "The request contained parameters that don't match the expected schema for this method.",
		PossibleCauses: []string{
			"The parameter value is missing or null when it's required",
			"The parameter has the wrong type (e.g., string instead of number)",
			"The parameter name is misspelled",
			"The JSON structure doesn't match the expected format",
		},
		SuggestedActions: []string{
			"Review the API documentation for the correct parameter schema",
			"Check that all required parameters are present",
			"Verify parameter types match what's expected",
			"Ensure parameter names are spelled correctly",
		},
		RelevantState: map[string]interface{}{
			"param_name":     paramName,
			"expected_type":  expectedType,
			"received_value": receivedValue,
		},
		Recoverable: true,
	})
}

func NewParseError(details string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"I couldn't parse the request as valid JSON. The JSON is malformed or contains syntax errors. "+
			"Details: %s",
		details,
	)

	return buildError(jsonrpc.CodeParseError, message, LLMErrorData{
		ErrorType:   "parse_error",
		Explanation: "The request body is not valid JSON according to the JSON specification.",
		PossibleCauses: []string{
			"Missing quotes around strings",
			"Trailing commas in objects or arrays",
			"Unescaped special characters",
			"Incomplete JSON structure (missing closing braces or brackets)",
			"Invalid Unicode escape sequences",
		},
		SuggestedActions: []string{
			"Validate your JSON using a JSON linter (e.g., jsonlint.com)",
			"Check for common syntax errors: missing quotes, trailing commas, unmatched braces",
			"Ensure all strings are properly quoted",
			"Verify that special characters are properly escaped",
		},
		Recoverable: true,
		Details:     details,
	})
}

func NewInvalidRequestError(details string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"The request is not a valid JSON-RPC 2.0 request. "+
			"All requests must include 'jsonrpc': '2.0', 'method', and optionally 'params' and 'id'. "+
			"Details: %s",
		details,
	)

	return buildError(jsonrpc.CodeInvalidRequest, message, LLMErrorData{
		ErrorType:   "invalid_request",
		Explanation: "The request doesn't conform to the JSON-RPC 2.0 specification structure.",
		PossibleCauses: []string{
			"Missing required 'jsonrpc' field",
			"Missing required 'method' field",
			"The 'jsonrpc' field is not '2.0'",
			"The request is not a JSON object",
			"Reserved field names are used incorrectly",
		},
		SuggestedActions: []string{
			"Ensure the request includes: {\"jsonrpc\": \"2.0\", \"method\": \"...\"}",
			"Add an 'id' field for requests that expect responses",
			"Review the JSON-RPC 2.0 specification",
			"Check that 'params' is an object or array if present",
		},
		Recoverable: true,
		Details:     details,
	})
}

func NewMethodNotFoundError(methodName string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"The method '%s' is not supported by this relay. "+
			"Relay methods are session/new and session/resume. "+
			"MCP methods like initialize and tools/call are forwarded to the server after session creation.",
		methodName,
	)

	return buildError(jsonrpc.CodeMethodNotFound, message, LLMErrorData{
		ErrorType:   "method_not_found",
		Explanation: "The requested method name doesn't match any handler in the relay.",
		PossibleCauses: []string{
			"The method name is misspelled",
			"The method is not implemented on the relay",
			"You meant to call a method on the MCP server but haven't created a session yet",
			"The protocol version you're targeting has different method names",
		},
		SuggestedActions: []string{
			"Check the method name spelling: relay methods are session/new and session/resume",
			"Create a session first using session/new if you want to call MCP server methods",
			"Review the API documentation for available methods",
		},
		RelevantState: map[string]interface{}{
			"method_name": methodName,
		},
		Recoverable: true,
	})
}

func NewInternalError(details string) *jsonrpc.ErrorObject {
	message := fmt.Sprintf(
		"An internal server error occurred while processing your request. "+
			"This is likely a bug in the relay. Details: %s",
		details,
	)

	return buildError(jsonrpc.CodeInternalError, message, LLMErrorData{
		ErrorType:   "internal_error",
		Explanation: "The relay encountered an unexpected error during request processing.",
		PossibleCauses: []string{
			"A bug in the relay code",
			"Resource exhaustion (out of memory, file descriptors)",
			"Filesystem permissions issues",
			"Unexpected MCP server behavior",
		},
		SuggestedActions: []string{
			"Check the relay logs for stack traces or error details",
			"Ensure the relay has sufficient system resources",
			"Verify filesystem permissions for the working directory",
			"Report this error to the relay maintainers",
			"Try the request again - it may be a transient issue",
		},
		Recoverable: false,
		Details:     details,
	})
}
