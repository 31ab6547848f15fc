// Package llm provides the chat-completion-with-tool-calling contract the
// cognitive loop and intent index builder consume (spec §6 LLM contract),
// plus raw-HTTP adapters for Anthropic and OpenAI.
package llm

// Message is one turn of a conversation sent to the provider.
type Message struct {
	Role    string
	Content string
}

// ToolDefinition describes one function the model may call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// ToolChoice selects whether the model may or must call a function.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a function.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceRequired forces the model to call exactly one function.
	ToolChoiceRequired ToolChoice = "required"
)

// ToolCall is one function call the model chose to make.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// CompletionRequest is a single-turn completion request with optional
// function-calling tools. The kernel always sends a single user message
// (the rendered prompt) and never expects more than one tool call back.
type CompletionRequest struct {
	Messages    []Message
	Tools       []ToolDefinition
	ToolChoice  ToolChoice
	Temperature float64
}

// CompletionResponse is the provider's reply: free text, and/or tool calls.
type CompletionResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// Client is the provider-agnostic interface the kernel depends on.
type Client interface {
	Complete(req CompletionRequest) (*CompletionResponse, error)
	ModelName() string
}
