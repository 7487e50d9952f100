package registry

import (
	"context"
	"testing"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools"
	"github.com/nachoal/parts-agent-go/tools/base"
)

type panicTool struct {
	base.BaseTool
}

func (p *panicTool) Parameters() interface{} { return &base.LegacyParams{} }

func (p *panicTool) Execute(ctx context.Context, args map[string]interface{}, call tools.CallContext) tools.Result {
	panic("boom")
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	if err := r.Register(tools.NameSaveInfo, tools.NewSaveInfoTool); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if err := r.Register(tools.NameGenerateQuote, tools.NewQuoteTool); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	return r
}

func TestExecute_UnknownFunction(t *testing.T) {
	r := newTestRegistry(t)

	res := r.Execute(context.Background(), "no_existe", map[string]interface{}{}, tools.CallContext{})
	if res.Success {
		t.Fatalf("expected failure for unknown function")
	}
	if res.Error != "Función 'no_existe' no encontrada" {
		t.Fatalf("unexpected error message: %q", res.Error)
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	r := New()
	_ = r.Register("explota", func() tools.Tool {
		return &panicTool{BaseTool: base.BaseTool{ToolName: "explota", ToolDesc: "test"}}
	})

	res := r.Execute(context.Background(), "explota", nil, tools.CallContext{})
	if res.Success || res.Code != tools.CodePanic {
		t.Fatalf("expected recovered failure, got %+v", res)
	}
}

func TestExecute_FillsClockAndNilArgs(t *testing.T) {
	r := newTestRegistry(t)

	res := r.Execute(context.Background(), tools.NameSaveInfo, map[string]interface{}{"año": float64(2020)}, tools.CallContext{})
	if !res.Success {
		t.Fatalf("expected success with zero Now, got %+v", res)
	}

	res = r.Execute(context.Background(), tools.NameSaveInfo, nil, tools.CallContext{})
	if res.Success {
		t.Fatalf("expected failure for nil args")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Register(tools.NameSaveInfo, tools.NewSaveInfoTool); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestDefinitions_SortedWithSchemas(t *testing.T) {
	r := newTestRegistry(t)

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Function.Name != tools.NameGenerateQuote || defs[1].Function.Name != tools.NameSaveInfo {
		t.Fatalf("expected sorted names, got %s, %s", defs[0].Function.Name, defs[1].Function.Name)
	}
	if defs[0].Type != "function" {
		t.Fatalf("expected type function, got %q", defs[0].Type)
	}

	params := defs[1].Function.Parameters
	props, ok := params["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected properties map, got %T", params["properties"])
	}
	for _, key := range []string{"nombre", "pieza", "marca", "modelo", "año", "litraje", "numeroSerie", "modeloEspecial", "vehiculo"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("expected property %q in schema", key)
		}
	}
	nombre := props["nombre"].(map[string]interface{})
	if nombre["minLength"] != 2 {
		t.Fatalf("expected minLength 2 on nombre, got %v", nombre["minLength"])
	}
	year := props["año"].(map[string]interface{})
	if year["type"] != "integer" || year["minimum"] != 1990 {
		t.Fatalf("unexpected año schema: %v", year)
	}

	quote := defs[0].Function.Parameters
	required, _ := quote["required"].([]string)
	if len(required) != 1 || required[0] != "clientInfo" {
		t.Fatalf("expected clientInfo required, got %v", quote["required"])
	}
}

func TestExecute_UsesSessionContext(t *testing.T) {
	r := newTestRegistry(t)
	call := tools.CallContext{ClientInfo: session.ClientInfo{Name: "Juan"}}

	res := r.Execute(context.Background(), tools.NameSaveInfo, map[string]interface{}{"pieza": "radiador"}, call)
	if res.Data.NextStatus != session.StatusCollectingBrand {
		t.Fatalf("expected collecting_brand, got %s", res.Data.NextStatus)
	}
}
