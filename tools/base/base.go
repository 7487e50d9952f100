package base

// Kind groups functions by what they do to a conversation
type Kind string

const (
	KindCapture Kind = "capture" // writes client or vehicle fields
	KindCheck   Kind = "check"   // read-only inspection of the record
	KindQuote   Kind = "quote"
)

// BaseTool provides common functionality for tools
type BaseTool struct {
	ToolName string
	ToolDesc string
	ToolKind Kind
}

// Name returns the tool name
func (b *BaseTool) Name() string {
	return b.ToolName
}

// Description returns the tool description
func (b *BaseTool) Description() string {
	return b.ToolDesc
}

// Kind returns the function group, capture when unset
func (b *BaseTool) Kind() Kind {
	if b.ToolKind == "" {
		return KindCapture
	}
	return b.ToolKind
}
