package nsobridge

// RequestOptions contains options for chat completion requests.
type RequestOptions struct {
	Model       string      `json:"model"`
	Messages    []Message   `json:"messages"`
	Stream      bool        `json:"stream"`
	Tools       []ToolParam `json:"tools,omitempty"`
	ToolChoice  string      `json:"tool_choice,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// Message represents one conversation turn: user input, assistant output
// (possibly carrying tool calls), or a tool result referencing the call
// that produced it.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ChatResponse represents a non-streaming response from the
// /chat/completions endpoint.
type ChatResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Error   string   `json:"error,omitempty"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatStreamChunk is one incremental event of a streaming chat completion.
type ChatStreamChunk struct {
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice carries the delta of a single choice within a stream chunk.
type StreamChoice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Delta is the incremental payload of a stream chunk: visible text and/or
// tool-call fragments.
type Delta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// Usage represents token usage information in API responses.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelDesc represents a model description from the /models endpoint.
type ModelDesc struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Root   string `json:"root"`
}

// listModelsResponse is an internal type for deserializing the /models
// endpoint response.
type listModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelDesc `json:"data"`
}
