package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
)

// SaveInfoTool stores any subset of client and vehicle fields in one call.
// It backs guardar_informacion, guardar_info_cliente and guardar_info_vehiculo.
type SaveInfoTool struct {
	base.BaseTool
}

// Parameters returns the parameters struct
func (t *SaveInfoTool) Parameters() interface{} {
	return &base.SaveParams{}
}

// Execute validates each submitted field on its own and returns the accepted ones
func (t *SaveInfoTool) Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result {
	update, outcomes := ExtractClientInfo(args, call.Now)
	return saveResult(update, outcomes, call)
}

// LegacyFieldTool saves a single campo/valor pair
type LegacyFieldTool struct {
	base.BaseTool
}

// Parameters returns the parameters struct
func (t *LegacyFieldTool) Parameters() interface{} {
	return &base.LegacyParams{}
}

// Execute saves one field
func (t *LegacyFieldTool) Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result {
	campo, _ := stringArg(args["campo"])
	field, ok := CanonicalField(campo)
	if !ok {
		return Failure(NewToolError(CodeInvalidData, fmt.Sprintf("Campo '%s' no reconocido", campo)).
			WithDetail("campo", campo))
	}

	update, outcomes := extractFields(map[string]interface{}{field: args["valor"]}, call.Now)
	return saveResult(update, outcomes, call)
}

func saveResult(update session.ClientInfo, outcomes []FieldOutcome, call CallContext) Result {
	accepted := AcceptedFields(outcomes)
	if len(accepted) == 0 {
		res := Failure(NewToolError(CodeNoValidFields, "No se recibieron datos válidos para guardar"))
		res.Fields = outcomes
		if rejected := RejectedFields(outcomes); len(rejected) > 0 {
			res.Data = &ResultData{Issues: rejected}
		}
		return res
	}

	merged := session.Merge(call.ClientInfo, update)
	msg := "Información guardada: " + strings.Join(accepted, ", ")
	if rejected := RejectedFields(outcomes); len(rejected) > 0 {
		msg += ". No se guardó: " + strings.Join(rejected, "; ")
	}

	return Result{
		Success: true,
		Data: &ResultData{
			ClientInfo: &update,
			NextStatus: session.Derive(merged),
			Missing:    session.Missing(merged),
			Issues:     RejectedFields(outcomes),
		},
		Message: msg,
		Fields:  outcomes,
	}
}
