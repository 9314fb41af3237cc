// ABOUTME: MCP payload shape structs for the known method vocabulary
// ABOUTME: Each shape validates its constant method and required fields

package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

// Fixed method names of the vocabulary.
const (
	MethodInitialize       = "initialize"
	MethodPing             = "ping"
	MethodListTools        = "tools/list"
	MethodCallTool         = "tools/call"
	MethodListResources    = "resources/list"
	MethodReadResource     = "resources/read"
	MethodListPrompts      = "prompts/list"
	MethodGetPrompt        = "prompts/get"
	MethodSetLevel         = "logging/setLevel"
	MethodComplete         = "completion/complete"
	MethodListRoots        = "roots/list"
	MethodCreateMessage    = "sampling/createMessage"
	MethodElicit           = "elicitation/create"
	MethodInitialized      = "notifications/initialized"
	MethodCancelled        = "notifications/cancelled"
	MethodProgress         = "notifications/progress"
	MethodRootsListChanged = "notifications/roots/list_changed"
	MethodToolListChanged  = "notifications/tools/list_changed"
	MethodResourceUpdated  = "notifications/resources/updated"
	MethodLoggingMessage   = "notifications/message"
)

func requiredFieldError(structName, field string) error {
	return jsonrpc.NewInvalidRequestError().WithMessage(fmt.Sprintf(
		"missing required field %q in struct %q", field, structName))
}

func checkMethod(structName, expected, actual string) error {
	if actual != expected {
		return jsonrpc.NewConstFieldError(structName, "method", expected, actual)
	}
	return nil
}

// Implementation names one of the two peers.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ClientCapabilities struct {
	Roots        *RootsCapability           `json:"roots,omitempty"`
	Sampling     json.RawMessage            `json:"sampling,omitempty"`
	Elicitation  json.RawMessage            `json:"elicitation,omitempty"`
	Experimental map[string]json.RawMessage `json:"experimental,omitempty"`
}

type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ServerCapabilities struct {
	Tools        *ToolsCapability           `json:"tools,omitempty"`
	Resources    *ResourcesCapability       `json:"resources,omitempty"`
	Prompts      *PromptsCapability         `json:"prompts,omitempty"`
	Logging      json.RawMessage            `json:"logging,omitempty"`
	Completions  json.RawMessage            `json:"completions,omitempty"`
	Experimental map[string]json.RawMessage `json:"experimental,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ContentBlock is a single piece of tool/prompt/sampling content.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type PromptMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
}

type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

type SamplingMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
}

// EmptyParams is the params object of methods that take none.
type EmptyParams struct {
	Meta json.RawMessage `json:"_meta,omitempty"`
}

// PaginatedParams is shared by the list methods.
type PaginatedParams struct {
	Cursor string          `json:"cursor,omitempty"`
	Meta   json.RawMessage `json:"_meta,omitempty"`
}

//
// Requests, client to server.
//

type InitializeRequest struct {
	Method string           `json:"method"`
	Params InitializeParams `json:"params"`
}

type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

func NewInitializeRequest(version jsonrpc.ProtocolVersion, caps ClientCapabilities, clientInfo Implementation) *InitializeRequest {
	return &InitializeRequest{
		Method: MethodInitialize,
		Params: InitializeParams{
			ProtocolVersion: string(version),
			Capabilities:    caps,
			ClientInfo:      clientInfo,
		},
	}
}

func (r *InitializeRequest) Validate() error {
	if err := checkMethod("InitializeRequest", MethodInitialize, r.Method); err != nil {
		return err
	}
	if r.Params.ProtocolVersion == "" {
		return requiredFieldError("InitializeParams", "protocolVersion")
	}
	if r.Params.ClientInfo.Name == "" {
		return requiredFieldError("InitializeParams", "clientInfo")
	}
	return nil
}

type PingRequest struct {
	Method string       `json:"method"`
	Params *EmptyParams `json:"params,omitempty"`
}

func NewPingRequest() *PingRequest {
	return &PingRequest{Method: MethodPing}
}

func (r *PingRequest) Validate() error {
	return checkMethod("PingRequest", MethodPing, r.Method)
}

type ListToolsRequest struct {
	Method string           `json:"method"`
	Params *PaginatedParams `json:"params,omitempty"`
}

func (r *ListToolsRequest) Validate() error {
	return checkMethod("ListToolsRequest", MethodListTools, r.Method)
}

type CallToolRequest struct {
	Method string         `json:"method"`
	Params CallToolParams `json:"params"`
}

type CallToolParams struct {
	Name      string                     `json:"name"`
	Arguments map[string]json.RawMessage `json:"arguments,omitempty"`
	Meta      json.RawMessage            `json:"_meta,omitempty"`
}

func (r *CallToolRequest) Validate() error {
	if err := checkMethod("CallToolRequest", MethodCallTool, r.Method); err != nil {
		return err
	}
	if r.Params.Name == "" {
		return requiredFieldError("CallToolParams", "name")
	}
	return nil
}

type ListResourcesRequest struct {
	Method string           `json:"method"`
	Params *PaginatedParams `json:"params,omitempty"`
}

func (r *ListResourcesRequest) Validate() error {
	return checkMethod("ListResourcesRequest", MethodListResources, r.Method)
}

type ReadResourceRequest struct {
	Method string             `json:"method"`
	Params ReadResourceParams `json:"params"`
}

type ReadResourceParams struct {
	URI  string          `json:"uri"`
	Meta json.RawMessage `json:"_meta,omitempty"`
}

func (r *ReadResourceRequest) Validate() error {
	if err := checkMethod("ReadResourceRequest", MethodReadResource, r.Method); err != nil {
		return err
	}
	if r.Params.URI == "" {
		return requiredFieldError("ReadResourceParams", "uri")
	}
	return nil
}

type ListPromptsRequest struct {
	Method string           `json:"method"`
	Params *PaginatedParams `json:"params,omitempty"`
}

func (r *ListPromptsRequest) Validate() error {
	return checkMethod("ListPromptsRequest", MethodListPrompts, r.Method)
}

type GetPromptRequest struct {
	Method string          `json:"method"`
	Params GetPromptParams `json:"params"`
}

type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (r *GetPromptRequest) Validate() error {
	if err := checkMethod("GetPromptRequest", MethodGetPrompt, r.Method); err != nil {
		return err
	}
	if r.Params.Name == "" {
		return requiredFieldError("GetPromptParams", "name")
	}
	return nil
}

type SetLevelRequest struct {
	Method string         `json:"method"`
	Params SetLevelParams `json:"params"`
}

type SetLevelParams struct {
	Level string `json:"level"`
}

func (r *SetLevelRequest) Validate() error {
	if err := checkMethod("SetLevelRequest", MethodSetLevel, r.Method); err != nil {
		return err
	}
	if r.Params.Level == "" {
		return requiredFieldError("SetLevelParams", "level")
	}
	return nil
}

// CompleteRequest exists from revision 2025-03-26 on.
type CompleteRequest struct {
	Method string         `json:"method"`
	Params CompleteParams `json:"params"`
}

type CompleteParams struct {
	Ref      json.RawMessage  `json:"ref"`
	Argument CompleteArgument `json:"argument"`
}

type CompleteArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (r *CompleteRequest) Validate() error {
	if err := checkMethod("CompleteRequest", MethodComplete, r.Method); err != nil {
		return err
	}
	if r.Params.Ref == nil {
		return requiredFieldError("CompleteParams", "ref")
	}
	return nil
}

//
// Requests, server to client.
//

type ListRootsRequest struct {
	Method string       `json:"method"`
	Params *EmptyParams `json:"params,omitempty"`
}

func (r *ListRootsRequest) Validate() error {
	return checkMethod("ListRootsRequest", MethodListRoots, r.Method)
}

type CreateMessageRequest struct {
	Method string              `json:"method"`
	Params CreateMessageParams `json:"params"`
}

type CreateMessageParams struct {
	Messages     []SamplingMessage `json:"messages"`
	MaxTokens    int               `json:"maxTokens"`
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	Temperature  *float64          `json:"temperature,omitempty"`
	Meta         json.RawMessage   `json:"_meta,omitempty"`
}

func (r *CreateMessageRequest) Validate() error {
	if err := checkMethod("CreateMessageRequest", MethodCreateMessage, r.Method); err != nil {
		return err
	}
	if r.Params.Messages == nil {
		return requiredFieldError("CreateMessageParams", "messages")
	}
	return nil
}

// ElicitRequest exists in the draft revision only.
type ElicitRequest struct {
	Method string       `json:"method"`
	Params ElicitParams `json:"params"`
}

type ElicitParams struct {
	Message         string          `json:"message"`
	RequestedSchema json.RawMessage `json:"requestedSchema"`
}

func (r *ElicitRequest) Validate() error {
	if err := checkMethod("ElicitRequest", MethodElicit, r.Method); err != nil {
		return err
	}
	if r.Params.Message == "" {
		return requiredFieldError("ElicitParams", "message")
	}
	return nil
}

//
// Notifications.
//

type InitializedNotification struct {
	Method string       `json:"method"`
	Params *EmptyParams `json:"params,omitempty"`
}

func NewInitializedNotification() *InitializedNotification {
	return &InitializedNotification{Method: MethodInitialized}
}

func (n *InitializedNotification) Validate() error {
	return checkMethod("InitializedNotification", MethodInitialized, n.Method)
}

type CancelledNotification struct {
	Method string          `json:"method"`
	Params CancelledParams `json:"params"`
}

type CancelledParams struct {
	RequestID jsonrpc.RequestID `json:"requestId"`
	Reason    string            `json:"reason,omitempty"`
}

func (n *CancelledNotification) Validate() error {
	if err := checkMethod("CancelledNotification", MethodCancelled, n.Method); err != nil {
		return err
	}
	if !n.Params.RequestID.Valid() {
		return requiredFieldError("CancelledParams", "requestId")
	}
	return nil
}

type ProgressNotification struct {
	Method string         `json:"method"`
	Params ProgressParams `json:"params"`
}

type ProgressParams struct {
	ProgressToken json.RawMessage `json:"progressToken"`
	Progress      float64         `json:"progress"`
	Total         *float64        `json:"total,omitempty"`
	Message       string          `json:"message,omitempty"`
}

func (n *ProgressNotification) Validate() error {
	if err := checkMethod("ProgressNotification", MethodProgress, n.Method); err != nil {
		return err
	}
	if n.Params.ProgressToken == nil {
		return requiredFieldError("ProgressParams", "progressToken")
	}
	return nil
}

type RootsListChangedNotification struct {
	Method string       `json:"method"`
	Params *EmptyParams `json:"params,omitempty"`
}

func (n *RootsListChangedNotification) Validate() error {
	return checkMethod("RootsListChangedNotification", MethodRootsListChanged, n.Method)
}

type ToolListChangedNotification struct {
	Method string       `json:"method"`
	Params *EmptyParams `json:"params,omitempty"`
}

func (n *ToolListChangedNotification) Validate() error {
	return checkMethod("ToolListChangedNotification", MethodToolListChanged, n.Method)
}

type ResourceUpdatedNotification struct {
	Method string                `json:"method"`
	Params ResourceUpdatedParams `json:"params"`
}

type ResourceUpdatedParams struct {
	URI string `json:"uri"`
}

func (n *ResourceUpdatedNotification) Validate() error {
	if err := checkMethod("ResourceUpdatedNotification", MethodResourceUpdated, n.Method); err != nil {
		return err
	}
	if n.Params.URI == "" {
		return requiredFieldError("ResourceUpdatedParams", "uri")
	}
	return nil
}

type LoggingMessageNotification struct {
	Method string               `json:"method"`
	Params LoggingMessageParams `json:"params"`
}

type LoggingMessageParams struct {
	Level  string          `json:"level"`
	Logger string          `json:"logger,omitempty"`
	Data   json.RawMessage `json:"data"`
}

func (n *LoggingMessageNotification) Validate() error {
	if err := checkMethod("LoggingMessageNotification", MethodLoggingMessage, n.Method); err != nil {
		return err
	}
	if n.Params.Level == "" {
		return requiredFieldError("LoggingMessageParams", "level")
	}
	return nil
}

//
// Results. Results carry no method on the wire, so discrimination is
// purely structural: every shape requires its signature field.
//

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
	Meta            json.RawMessage    `json:"_meta,omitempty"`
}

func (r *InitializeResult) Validate() error {
	if r.ProtocolVersion == "" {
		return requiredFieldError("InitializeResult", "protocolVersion")
	}
	if r.ServerInfo.Name == "" {
		return requiredFieldError("InitializeResult", "serverInfo")
	}
	return nil
}

type ListToolsResult struct {
	Tools      []Tool          `json:"tools"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Meta       json.RawMessage `json:"_meta,omitempty"`
}

func (r *ListToolsResult) Validate() error {
	if r.Tools == nil {
		return requiredFieldError("ListToolsResult", "tools")
	}
	return nil
}

type CallToolResult struct {
	Content []ContentBlock  `json:"content"`
	IsError bool            `json:"isError,omitempty"`
	Meta    json.RawMessage `json:"_meta,omitempty"`
}

func (r *CallToolResult) Validate() error {
	if r.Content == nil {
		return requiredFieldError("CallToolResult", "content")
	}
	return nil
}

type ListResourcesResult struct {
	Resources  []Resource      `json:"resources"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Meta       json.RawMessage `json:"_meta,omitempty"`
}

func (r *ListResourcesResult) Validate() error {
	if r.Resources == nil {
		return requiredFieldError("ListResourcesResult", "resources")
	}
	return nil
}

type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
	Meta     json.RawMessage    `json:"_meta,omitempty"`
}

func (r *ReadResourceResult) Validate() error {
	if r.Contents == nil {
		return requiredFieldError("ReadResourceResult", "contents")
	}
	return nil
}

type ListPromptsResult struct {
	Prompts    []Prompt        `json:"prompts"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Meta       json.RawMessage `json:"_meta,omitempty"`
}

func (r *ListPromptsResult) Validate() error {
	if r.Prompts == nil {
		return requiredFieldError("ListPromptsResult", "prompts")
	}
	return nil
}

type GetPromptResult struct {
	Messages    []PromptMessage `json:"messages"`
	Description string          `json:"description,omitempty"`
	Meta        json.RawMessage `json:"_meta,omitempty"`
}

func (r *GetPromptResult) Validate() error {
	if r.Messages == nil {
		return requiredFieldError("GetPromptResult", "messages")
	}
	return nil
}

type CompleteResult struct {
	Completion Completion      `json:"completion"`
	Meta       json.RawMessage `json:"_meta,omitempty"`
}

type Completion struct {
	Values  []string `json:"values"`
	Total   *int     `json:"total,omitempty"`
	HasMore bool     `json:"hasMore,omitempty"`
}

func (r *CompleteResult) Validate() error {
	if r.Completion.Values == nil {
		return requiredFieldError("CompleteResult", "completion")
	}
	return nil
}

type ListRootsResult struct {
	Roots []Root          `json:"roots"`
	Meta  json.RawMessage `json:"_meta,omitempty"`
}

func (r *ListRootsResult) Validate() error {
	if r.Roots == nil {
		return requiredFieldError("ListRootsResult", "roots")
	}
	return nil
}

type CreateMessageResult struct {
	Role       string          `json:"role"`
	Content    ContentBlock    `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stopReason,omitempty"`
	Meta       json.RawMessage `json:"_meta,omitempty"`
}

func (r *CreateMessageResult) Validate() error {
	if r.Role == "" {
		return requiredFieldError("CreateMessageResult", "role")
	}
	if r.Model == "" {
		return requiredFieldError("CreateMessageResult", "model")
	}
	return nil
}

// EmptyResult matches any bare result: it must stay the last candidate
// in every result list.
type EmptyResult struct {
	Meta json.RawMessage `json:"_meta,omitempty"`
}
