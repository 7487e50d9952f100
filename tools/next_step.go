package tools

import (
	"context"
	"strings"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
)

// NextStepTool reports which field to ask for next
type NextStepTool struct {
	base.BaseTool
}

// Parameters returns the parameters struct
func (t *NextStepTool) Parameters() interface{} {
	return &base.ClientInfoParams{}
}

// Execute derives the next status from the stored record plus any fields in
// clientInfo. Invalid fields in the argument are ignored.
func (t *NextStepTool) Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result {
	update, _ := ExtractClientInfo(args, call.Now)
	merged := session.Merge(call.ClientInfo, update)
	missing := session.Missing(merged)
	next := session.Derive(merged)

	// a quote in progress is kept unless data went missing
	if call.Status == session.StatusGeneratingQuote && len(missing) == 0 {
		next = session.StatusGeneratingQuote
	}

	msg := "Datos completos, ya se puede generar la cotización"
	if len(missing) > 0 {
		msg = "Falta: " + strings.Join(missing, ", ")
	}

	return Result{
		Success: true,
		Data: &ResultData{
			NextStatus: next,
			Missing:    missing,
		},
		Message: msg,
	}
}
