// ABOUTME: Runtime detection errors with LLM-optimized messaging
// ABOUTME: Used when container runtime is not found or misconfigured

package errors

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type RuntimeNotFoundError struct {
	RequestedRuntime  string
	AvailableRuntimes []string
}

func NewRuntimeNotFoundError(requested string, available []string) *RuntimeNotFoundError {
	return &RuntimeNotFoundError{
		RequestedRuntime:  requested,
		AvailableRuntimes: available,
	}
}

func (e *RuntimeNotFoundError) Error() string {
	if len(e.AvailableRuntimes) > 0 {
		return fmt.Sprintf("requested runtime %q not found, available: %v", e.RequestedRuntime, e.AvailableRuntimes)
	}
	return fmt.Sprintf("requested runtime %q not found, no runtimes available", e.RequestedRuntime)
}

func (e *RuntimeNotFoundError) ToJSONRPCError() *jsonrpc.ErrorObject {
	causes := []string{
		"The requested runtime is not installed on this system",
		"The runtime daemon is not running",
		"The runtime socket path is incorrect in config",
	}

	actions := []string{
		fmt.Sprintf("Install %s: https://docs.docker.com/get-docker/", e.RequestedRuntime),
		"Set mcp.mode to \"process\" in config.yaml to run the server without a container",
	}

	if len(e.AvailableRuntimes) > 0 {
		actions = append(actions, fmt.Sprintf("Use one of the available runtimes: %v", e.AvailableRuntimes))
	}

	data := LLMErrorData{
		ErrorType:        "runtime_not_found",
		Explanation:      "The container runtime specified in your config is not available.",
		PossibleCauses:   causes,
		SuggestedActions: actions,
		RelevantState: map[string]interface{}{
			"requested": e.RequestedRuntime,
			"available": e.AvailableRuntimes,
		},
		Recoverable: true,
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal error data: %v", err)
		dataBytes = []byte("{}")
	}

	return &jsonrpc.ErrorObject{
		Code:    jsonrpc.CodeConnectionClosed,
		Message: e.Error(),
		Data:    dataBytes,
	}
}
