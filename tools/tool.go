package tools

import (
	"context"
	"time"

	"github.com/nachoal/parts-agent-go/session"
)

// Tool defines the interface that all functions exposed to the model implement
type Tool interface {
	// Name returns the unique name of the function
	Name() string

	// Description returns a brief description of what the function does
	Description() string

	// Execute runs the function against untyped arguments decoded from the
	// model's tool call. It never panics on bad input; failures are reported
	// through Result.
	Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result

	// Parameters returns a struct that defines the function's parameters
	// This struct will be used for schema generation
	Parameters() interface{}
}

// CallContext is the conversation state a function runs against
type CallContext struct {
	UserID         string
	ConversationID string
	ClientInfo     session.ClientInfo
	Status         session.Status
	Now            time.Time
}

// FieldOutcome reports whether one submitted field was applied
type FieldOutcome struct {
	Field    string      `json:"campo"`
	Value    interface{} `json:"valor,omitempty"`
	Accepted bool        `json:"aceptado"`
	Reason   string      `json:"motivo,omitempty"`
}

// ResultData is the structured payload of a successful call
type ResultData struct {
	ClientInfo *session.ClientInfo `json:"clientInfo,omitempty"`
	NextStatus session.Status      `json:"nextStatus,omitempty"`
	Quote      *Quote              `json:"cotizacion,omitempty"`
	Missing    []string            `json:"faltantes,omitempty"`
	Issues     []string            `json:"problemas,omitempty"`
}

// Result is the outcome of executing a function
type Result struct {
	Success bool           `json:"success"`
	Data    *ResultData    `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Fields  []FieldOutcome `json:"fields,omitempty"`
}

// Failure builds a failed result from a tool error
func Failure(err *ToolError) Result {
	return Result{Success: false, Error: err.Message, Code: err.Code}
}

// ToolError represents a structured error from a tool
type ToolError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// NewToolError creates a new tool error
func NewToolError(code, message string) *ToolError {
	return &ToolError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *ToolError) WithDetail(key string, value interface{}) *ToolError {
	e.Details[key] = value
	return e
}

// Error codes
const (
	CodeNotFound      = "FUNCTION_NOT_FOUND"
	CodeNoValidFields = "NO_VALID_FIELDS"
	CodeMissingData   = "MISSING_DATA"
	CodeInvalidData   = "INVALID_DATA"
	CodePanic         = "EXECUTION_FAILED"
)
