package agent

import (
	"time"

	"github.com/nachoal/parts-agent-go/llm"
	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools"
)

// Config contains orchestrator configuration
type Config struct {
	SystemPrompt   string
	WelcomeMessage string
	Model          string
	Temperature    *float32
	MaxTokens      *int
	// HistoryWindow is how many recent messages go into each request
	HistoryWindow int
	// SerializeTurns runs turns for the same conversation one at a time
	SerializeTurns bool
	Clock          func() time.Time
}

// DefaultConfig returns a default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		SystemPrompt:   defaultSystemPrompt,
		WelcomeMessage: defaultWelcomeMessage,
		HistoryWindow:  8,
		SerializeTurns: true,
		Clock:          time.Now,
	}
}

// TurnResult is the outcome of processing one user message
type TurnResult struct {
	Content        string         `json:"content"`
	State          session.Status `json:"conversationState"`
	FunctionCalled bool           `json:"functionCalled"`
	FunctionName   string         `json:"functionName,omitempty"`
	Error          string         `json:"error,omitempty"`

	// Diagnostics for operator tooling
	ArgsStage      llm.ParseStage `json:"-"`
	FunctionResult *tools.Result  `json:"-"`
	Fallback       bool           `json:"-"`
}

// Option is a functional option for configuring the orchestrator
type Option func(*Config)

// WithSystemPrompt sets the persona and task instructions
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.SystemPrompt = prompt
		}
	}
}

// WithWelcomeMessage sets the message seeded into new sessions
func WithWelcomeMessage(msg string) Option {
	return func(c *Config) {
		if msg != "" {
			c.WelcomeMessage = msg
		}
	}
}

// WithModel sets the model requested on every call
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTemperature sets the temperature
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Temperature = llm.Float32Ptr(temp)
	}
}

// WithMaxTokens sets the max tokens
func WithMaxTokens(max int) Option {
	return func(c *Config) {
		c.MaxTokens = llm.IntPtr(max)
	}
}

// WithHistoryWindow sets how many recent messages are sent as context
func WithHistoryWindow(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.HistoryWindow = n
		}
	}
}

// WithSerializeTurns toggles the per-conversation lock
func WithSerializeTurns(on bool) Option {
	return func(c *Config) {
		c.SerializeTurns = on
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Clock = now
		}
	}
}
