// ABOUTME: Per-version vocabulary tables mapping methods to payload shapes
// ABOUTME: Registration order is the resolver tie-break, keep specific first

package mcp

import "github.com/harper/mcp-relay/internal/jsonrpc"

func shape(method string, n func() interface{}) jsonrpc.Shape {
	return jsonrpc.Shape{Method: method, New: n}
}

// Vocabulary builds the closed shape table for one protocol revision.
// The table is assembled fresh on every call: no mutable globals.
func Vocabulary(version jsonrpc.ProtocolVersion) *jsonrpc.Vocabulary {
	v := jsonrpc.NewVocabulary(version)

	// Client to server requests.
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodInitialize, func() interface{} { return &InitializeRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodPing, func() interface{} { return &PingRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodListTools, func() interface{} { return &ListToolsRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodCallTool, func() interface{} { return &CallToolRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodListResources, func() interface{} { return &ListResourcesRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodReadResource, func() interface{} { return &ReadResourceRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodListPrompts, func() interface{} { return &ListPromptsRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodGetPrompt, func() interface{} { return &GetPromptRequest{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodSetLevel, func() interface{} { return &SetLevelRequest{} }))
	if version.Compare(jsonrpc.ProtocolVersion20250326) >= 0 {
		v.Register(jsonrpc.ClientToServer, jsonrpc.RoleRequest, shape(MethodComplete, func() interface{} { return &CompleteRequest{} }))
	}

	// Client to server notifications.
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleNotification, shape(MethodInitialized, func() interface{} { return &InitializedNotification{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleNotification, shape(MethodCancelled, func() interface{} { return &CancelledNotification{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleNotification, shape(MethodProgress, func() interface{} { return &ProgressNotification{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleNotification, shape(MethodRootsListChanged, func() interface{} { return &RootsListChangedNotification{} }))

	// Client to server results answer the server's requests.
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleResult, shape("", func() interface{} { return &ListRootsResult{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleResult, shape("", func() interface{} { return &CreateMessageResult{} }))
	v.Register(jsonrpc.ClientToServer, jsonrpc.RoleResult, shape("", func() interface{} { return &EmptyResult{} }))

	// Server to client requests.
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleRequest, shape(MethodPing, func() interface{} { return &PingRequest{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleRequest, shape(MethodListRoots, func() interface{} { return &ListRootsRequest{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleRequest, shape(MethodCreateMessage, func() interface{} { return &CreateMessageRequest{} }))
	if version == jsonrpc.ProtocolVersionDraft {
		v.Register(jsonrpc.ServerToClient, jsonrpc.RoleRequest, shape(MethodElicit, func() interface{} { return &ElicitRequest{} }))
	}

	// Server to client notifications.
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleNotification, shape(MethodLoggingMessage, func() interface{} { return &LoggingMessageNotification{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleNotification, shape(MethodProgress, func() interface{} { return &ProgressNotification{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleNotification, shape(MethodCancelled, func() interface{} { return &CancelledNotification{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleNotification, shape(MethodToolListChanged, func() interface{} { return &ToolListChangedNotification{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleNotification, shape(MethodResourceUpdated, func() interface{} { return &ResourceUpdatedNotification{} }))

	// Server to client results. EmptyResult matches any object, so it
	// stays last.
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &InitializeResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &ListToolsResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &CallToolResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &ListResourcesResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &ReadResourceResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &ListPromptsResult{} }))
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &GetPromptResult{} }))
	if version.Compare(jsonrpc.ProtocolVersion20250326) >= 0 {
		v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &CompleteResult{} }))
	}
	v.Register(jsonrpc.ServerToClient, jsonrpc.RoleResult, shape("", func() interface{} { return &EmptyResult{} }))

	return v
}
