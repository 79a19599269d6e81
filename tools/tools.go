package tools

import (
	"context"
	"encoding/json"
	"time"
)

// Tool is the contract for an LLM-callable instrument.
// It is provider-agnostic (no knowledge of OpenAI, Anthropic, etc.).
type Tool interface {
	Name() string
	Description() string
	// Parameters returns a valid JSON Schema as map (compatible with LLM tool definitions).
	Parameters() map[string]any
	// Execute runs the tool with the raw JSON arguments produced by the LLM
	// and returns the JSON-encoded result.
	Execute(ctx context.Context, argsJSON []byte) ([]byte, error)
}

// ToolMetadata is implemented by tools created with NewTool and provides optional per-tool
// settings. Registry uses Timeout() to override the default execution timeout when set.
type ToolMetadata interface {
	Timeout() time.Duration
}

// ToolCall is a single execution request (as produced by the LLM).
type ToolCall struct {
	ID       string
	ToolName string
	Args     json.RawMessage // JSON payload of arguments
}

// ToolResult is the outcome of one tool call. Exactly one of Result and Error
// is meaningful: Result holds the tool's JSON output on success, Error the
// failure otherwise.
type ToolResult struct {
	CallID   string
	ToolName string
	Result   json.RawMessage
	Error    error
}
