package schema

import (
	"testing"

	"github.com/nachoal/parts-agent-go/tools/base"
)

func TestGenerate_LegacyParams(t *testing.T) {
	schema, err := NewGenerator().Generate(&base.LegacyParams{})
	if err != nil {
		t.Fatalf("expected schema, got %v", err)
	}

	required := schema["required"].([]string)
	if len(required) != 2 || required[0] != "campo" || required[1] != "valor" {
		t.Fatalf("expected campo and valor required, got %v", required)
	}

	props := schema["properties"].(map[string]interface{})
	campo := props["campo"].(map[string]interface{})
	enum, _ := campo["enum"].([]string)
	if len(enum) != 8 || enum[0] != "nombre" || enum[4] != "año" {
		t.Fatalf("unexpected campo enum %v", campo["enum"])
	}
	if campo["description"] != "Campo a guardar" {
		t.Fatalf("expected description, got %v", campo["description"])
	}
}

func TestGenerate_NestedVehicle(t *testing.T) {
	schema, err := NewGenerator().Generate(base.SaveParams{})
	if err != nil {
		t.Fatalf("expected schema, got %v", err)
	}
	if required := schema["required"].([]string); len(required) != 0 {
		t.Fatalf("expected every field optional, got %v", required)
	}

	props := schema["properties"].(map[string]interface{})
	vehicle := props["vehiculo"].(map[string]interface{})
	if vehicle["type"] != "object" {
		t.Fatalf("expected nested object, got %v", vehicle["type"])
	}
	serial := vehicle["properties"].(map[string]interface{})["numeroSerie"].(map[string]interface{})
	if serial["minLength"] != 5 || serial["maxLength"] != 20 {
		t.Fatalf("expected length bounds 5..20, got %v", serial)
	}
}

func TestGenerate_RejectsNonStruct(t *testing.T) {
	if _, err := NewGenerator().Generate("nombre"); err == nil {
		t.Fatal("expected error for non-struct parameters")
	}
	if _, err := NewGenerator().Generate(nil); err == nil {
		t.Fatal("expected error for nil parameters")
	}
}
