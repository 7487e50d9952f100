package registry

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/nachoal/parts-agent-go/internal/metrics"
	"github.com/nachoal/parts-agent-go/internal/schema"
	"github.com/nachoal/parts-agent-go/llm"
	"github.com/nachoal/parts-agent-go/tools"
)

// ToolFactory is a function that creates a new tool instance
type ToolFactory func() tools.Tool

// Registry manages function registration and execution
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]ToolFactory
	generator *schema.Generator
}

// New creates a new tool registry
func New() *Registry {
	return &Registry{
		tools:     make(map[string]ToolFactory),
		generator: schema.NewGenerator(),
	}
}

// Register registers a tool factory with the given name
func (r *Registry) Register(name string, factory ToolFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' is already registered", name)
	}

	r.tools[name] = factory
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (tools.Tool, error) {
	r.mu.RLock()
	factory, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}

	return factory(), nil
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the function declaration for one tool
func (r *Registry) Definition(name string) (llm.Tool, error) {
	tool, err := r.Get(name)
	if err != nil {
		return llm.Tool{}, err
	}

	return r.generator.FunctionTool(tool.Name(), tool.Description(), tool.Parameters())
}

// Definitions returns declarations for every registered tool, sorted by name
func (r *Registry) Definitions() []llm.Tool {
	names := r.List()
	defs := make([]llm.Tool, 0, len(names))

	for _, name := range names {
		def, err := r.Definition(name)
		if err != nil {
			slog.Warn("skipping function without schema", "function", name, "error", err)
			continue
		}
		defs = append(defs, def)
	}

	return defs
}

// Execute runs the named function. It never returns an error and never
// panics: unknown names and handler panics become failed results.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}, call tools.CallContext) (result tools.Result) {
	tool, err := r.Get(name)
	if err != nil {
		metrics.RecordFunctionCall("unknown", false)
		return tools.Failure(tools.NewToolError(tools.CodeNotFound, fmt.Sprintf("Función '%s' no encontrada", name)))
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("function panicked",
				"function", name,
				"conversation_id", call.ConversationID,
				"panic", rec,
				"stack", string(debug.Stack()))
			result = tools.Failure(tools.NewToolError(tools.CodePanic, fmt.Sprintf("Error ejecutando '%s'", name)))
		}
		metrics.RecordFunctionCall(name, result.Success)
	}()

	if call.Now.IsZero() {
		call.Now = time.Now()
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	return tool.Execute(ctx, args, call)
}
