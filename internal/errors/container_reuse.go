// ABOUTME: Container reuse errors with LLM-optimized messaging
// ABOUTME: Used when an existing container cannot be reused on session resume

package errors

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type ContainerReuseError struct {
	ContainerID string
	SessionID   string
	Reason      string
}

func NewContainerReuseError(containerID, sessionID, reason string) *ContainerReuseError {
	return &ContainerReuseError{
		ContainerID: containerID,
		SessionID:   sessionID,
		Reason:      reason,
	}
}

func (e *ContainerReuseError) Error() string {
	return fmt.Sprintf("cannot reuse container %s for session %s: %s", e.ContainerID, e.SessionID, e.Reason)
}

func (e *ContainerReuseError) ToJSONRPCError() *jsonrpc.ErrorObject {
	data := LLMErrorData{
		ErrorType:   "container_reuse_failed",
		Explanation: "Found an existing container for this session but could not reuse it.",
		PossibleCauses: []string{
			"Container is in a corrupted state",
			"Container has insufficient permissions",
			"Container's workspace was deleted",
		},
		SuggestedActions: []string{
			fmt.Sprintf("Remove stale container: docker rm -f %s", e.ContainerID),
			"Check Docker permissions: docker ps",
			"Try creating a new session with session/new",
		},
		RelevantState: map[string]interface{}{
			"container_id": e.ContainerID,
			"session_id":   e.SessionID,
			"reason":       e.Reason,
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
