package tools

import (
	"context"
	"fmt"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
)

// ValidateVehicleTool checks that a vehicle has a usable brand, model and year
type ValidateVehicleTool struct {
	base.BaseTool
}

// Parameters returns the parameters struct
func (t *ValidateVehicleTool) Parameters() interface{} {
	return &base.VehicleCheckParams{}
}

// Execute validates the vehicle and returns it normalized
func (t *ValidateVehicleTool) Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result {
	vehicleArgs, ok := args["vehiculo"].(map[string]interface{})
	if !ok {
		return Failure(NewToolError(CodeMissingData, "Se requiere el objeto vehiculo con marca, modelo y año"))
	}

	info, outcomes := extractFields(collectFields(vehicleArgs), call.Now)
	issues := RejectedFields(outcomes)
	for _, f := range []string{session.FieldBrand, session.FieldModel, session.FieldYear} {
		if !info.Has(f) && !rejected(outcomes, f) {
			issues = append(issues, fmt.Sprintf("%s: dato requerido", f))
		}
	}

	if len(issues) > 0 {
		res := Failure(NewToolError(CodeInvalidData, "Los datos del vehículo no son válidos"))
		res.Data = &ResultData{Issues: issues}
		res.Fields = outcomes
		return res
	}

	update := session.ClientInfo{Vehicle: info.Vehicle}
	merged := session.Merge(call.ClientInfo, update)
	v := info.Vehicle
	return Result{
		Success: true,
		Data: &ResultData{
			ClientInfo: &update,
			NextStatus: session.Derive(merged),
			Missing:    session.Missing(merged),
		},
		Message: fmt.Sprintf("Vehículo válido: %s %s %d", v.Brand, v.Model, v.Year),
		Fields:  outcomes,
	}
}

func rejected(outcomes []FieldOutcome, field string) bool {
	for _, o := range outcomes {
		if o.Field == field && !o.Accepted {
			return true
		}
	}
	return false
}
