package llm

import "strings"

// HasToolCalls reports whether the first choice carries at least one tool call
func HasToolCalls(resp *ChatResponse) bool {
	return FirstToolCall(resp) != nil
}

// FirstToolCall returns the first tool call of the first choice, or nil
func FirstToolCall(resp *ChatResponse) *ToolCall {
	if resp == nil || len(resp.Choices) == 0 {
		return nil
	}
	calls := resp.Choices[0].Message.ToolCalls
	for i := range calls {
		if calls[i].Function.Name != "" {
			return &calls[i]
		}
	}
	return nil
}

// FirstContent returns the trimmed text of the first choice
func FirstContent(resp *ChatResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(GetStringValue(resp.Choices[0].Message.Content))
}
