// ABOUTME: XDG path errors with LLM-optimized messaging
// ABOUTME: Used when XDG directories cannot be created

package errors

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type XDGPathError struct {
	Variable      string
	AttemptedPath string
	UnderlyingErr error
}

func NewXDGPathError(variable, path string, err error) *XDGPathError {
	return &XDGPathError{
		Variable:      variable,
		AttemptedPath: path,
		UnderlyingErr: err,
	}
}

func (e *XDGPathError) Error() string {
	return fmt.Sprintf("cannot create %s directory at %s: %v", e.Variable, e.AttemptedPath, e.UnderlyingErr)
}

func (e *XDGPathError) ToJSONRPCError() *jsonrpc.ErrorObject {
	data := LLMErrorData{
		ErrorType:   "xdg_path_error",
		Explanation: "Could not create required XDG directories for mcp-relay.",
		PossibleCauses: []string{
			"Insufficient permissions in parent directory",
			"Disk is full",
			"Path already exists as a file (not directory)",
		},
		SuggestedActions: []string{
			fmt.Sprintf("Check permissions: ls -ld %s", e.AttemptedPath),
			"Check disk space: df -h",
			fmt.Sprintf("Manually create directory: mkdir -p %s", e.AttemptedPath),
		},
		RelevantState: map[string]interface{}{
			"variable":       e.Variable,
			"attempted_path": e.AttemptedPath,
			"error":          e.UnderlyingErr.Error(),
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
