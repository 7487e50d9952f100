package llm

import (
	"encoding/json"
	"time"
)

// Role represents the role of a message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Tool choice values accepted by chat-completions endpoints
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// Message represents a chat message
type Message struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`      // Pointer to allow nil/omission
	Name       string     `json:"name,omitempty"`         // For tool messages
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool responses
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages
}

// NewMessage builds a text message for the given role
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: StringPtr(content)}
}

// ToolCall represents a function/tool call request
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and the raw arguments string
// exactly as the model emitted it.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// UnmarshalJSON accepts arguments either as a JSON string (the documented
// shape) or as an inline object, which some compatible servers return.
func (fc *FunctionCall) UnmarshalJSON(data []byte) error {
	var wire struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	fc.Name = wire.Name
	fc.Arguments = ""
	if len(wire.Arguments) == 0 || string(wire.Arguments) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(wire.Arguments, &s); err == nil {
		fc.Arguments = s
		return nil
	}
	fc.Arguments = string(wire.Arguments)
	return nil
}

// Tool is a function declaration exposed to the model
type Tool struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function with its JSON schema
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ChatRequest represents a chat completion request. Optional sampling fields
// are pointers so that unset values are dropped from the wire payload.
type ChatRequest struct {
	Model            string      `json:"model"`
	Messages         []Message   `json:"messages"`
	Tools            []Tool      `json:"tools,omitempty"`
	ToolChoice       interface{} `json:"tool_choice,omitempty"` // "auto", "none", or specific tool
	Temperature      *float32    `json:"temperature,omitempty"`
	MaxTokens        *int        `json:"max_tokens,omitempty"`
	TopP             *float32    `json:"top_p,omitempty"`
	FrequencyPenalty *float32    `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32    `json:"presence_penalty,omitempty"`
	Stream           bool        `json:"stream"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID                string         `json:"id"`
	Object            string         `json:"object"`
	Created           int64          `json:"created"`
	Model             string         `json:"model"`
	Choices           []Choice       `json:"choices"`
	Usage             *Usage         `json:"usage,omitempty"`
	SystemFingerprint string         `json:"system_fingerprint,omitempty"`
	Error             *ErrorResponse `json:"error,omitempty"`
}

// Choice represents a single response choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// ClientOptions contains options for creating an LLM client. The generation
// fields are defaults applied to requests that leave them unset.
type ClientOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	DefaultModel      string
	Organization      string
	Headers           map[string]string
	RequestsPerMinute int

	Temperature      float32
	MaxTokens        int
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// ClientOption is a functional option for configuring clients
type ClientOption func(*ClientOptions)

// WithAPIKey sets the API key
func WithAPIKey(key string) ClientOption {
	return func(o *ClientOptions) {
		o.APIKey = key
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.BaseURL = url
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.Timeout = timeout
	}
}

// WithModel sets the default model
func WithModel(model string) ClientOption {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithMaxRetries sets the maximum number of retries for retryable failures
func WithMaxRetries(retries int) ClientOption {
	return func(o *ClientOptions) {
		o.MaxRetries = retries
	}
}

// WithOrganization sets the organization ID
func WithOrganization(org string) ClientOption {
	return func(o *ClientOptions) {
		o.Organization = org
	}
}

// WithHeaders sets additional headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithRequestsPerMinute paces outgoing requests on the client side.
// Zero disables pacing.
func WithRequestsPerMinute(n int) ClientOption {
	return func(o *ClientOptions) {
		o.RequestsPerMinute = n
	}
}

// WithSampling sets the default temperature and max tokens
func WithSampling(temperature float32, maxTokens int) ClientOption {
	return func(o *ClientOptions) {
		o.Temperature = temperature
		o.MaxTokens = maxTokens
	}
}

// WithPenalties sets the default top_p and penalty parameters
func WithPenalties(topP, frequency, presence float32) ClientOption {
	return func(o *ClientOptions) {
		o.TopP = topP
		o.FrequencyPenalty = frequency
		o.PresencePenalty = presence
	}
}

// StringPtr is a helper function to get a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// Float32Ptr returns a pointer to f
func Float32Ptr(f float32) *float32 {
	return &f
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

// GetStringValue safely gets string value from pointer
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
