package llm

import (
	"testing"
)

var testFields = []string{"nombre", "pieza", "marca", "modelo", "año", "litraje", "numeroSerie"}

func TestParseToolArguments_Object(t *testing.T) {
	parsed := ParseToolArguments(`{"marca":"Toyota","año":2018}`, testFields)

	if parsed.Stage != StageStrict {
		t.Fatalf("expected strict stage, got %s", parsed.Stage)
	}
	if parsed.Args["marca"] != "Toyota" {
		t.Fatalf("expected marca=Toyota, got %v", parsed.Args["marca"])
	}
	if parsed.Args["año"] != float64(2018) {
		t.Fatalf("expected año=2018, got %v", parsed.Args["año"])
	}
}

func TestParseToolArguments_EmptyInputs(t *testing.T) {
	for _, raw := range []string{"", "   ", "{}", " {} ", "null"} {
		parsed := ParseToolArguments(raw, testFields)
		if len(parsed.Args) != 0 {
			t.Fatalf("expected empty args for %q, got %v", raw, parsed.Args)
		}
		if parsed.Stage != StageStrict {
			t.Fatalf("expected strict stage for %q, got %s", raw, parsed.Stage)
		}
	}
}

func TestParseToolArguments_QuotedJSONObject(t *testing.T) {
	parsed := ParseToolArguments(`"{\"nombre\":\"Juan\"}"`, testFields)

	if parsed.Args["nombre"] != "Juan" {
		t.Fatalf("expected parsed nombre=Juan, got %v", parsed.Args["nombre"])
	}
	if parsed.Stage != StageStrict {
		t.Fatalf("expected strict stage, got %s", parsed.Stage)
	}
}

func TestParseToolArguments_ConcatenatedKeepsFirstObject(t *testing.T) {
	raw := `{"campo":"nombre","valor":"Juan"}{"campo":"marca","valor":"Toyota"}`
	parsed := ParseToolArguments(raw, testFields)

	if parsed.Stage != StageTruncated {
		t.Fatalf("expected truncated stage, got %s", parsed.Stage)
	}
	if len(parsed.Args) != 2 {
		t.Fatalf("expected exactly campo and valor, got %v", parsed.Args)
	}
	if parsed.Args["campo"] != "nombre" || parsed.Args["valor"] != "Juan" {
		t.Fatalf("expected first object only, got %v", parsed.Args)
	}
}

func TestParseToolArguments_ConcatenatedNestedFirstObject(t *testing.T) {
	raw := `{"vehiculo":{"marca":"Ford"}}{"nombre":"Ana"}`
	parsed := ParseToolArguments(raw, testFields)

	vehicle, ok := parsed.Args["vehiculo"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested vehiculo object, got %v", parsed.Args)
	}
	if vehicle["marca"] != "Ford" {
		t.Fatalf("expected marca=Ford, got %v", vehicle["marca"])
	}
	if _, ok := parsed.Args["nombre"]; ok {
		t.Fatalf("second object must be discarded, got %v", parsed.Args)
	}
}

func TestParseToolArguments_RecoveryStrategies(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
		wantValue string
	}{
		{
			name:      "explicit campo and valor",
			raw:       `{"campo":"modelo","valor":"Corolla",}`,
			wantField: "modelo",
			wantValue: "Corolla",
		},
		{
			name:      "numeric valor",
			raw:       `{"campo": "año", "valor": 2018`,
			wantField: "año",
			wantValue: "2018",
		},
		{
			name:      "known field pair",
			raw:       `{"foo":"bar", "marca":"Nissan"`,
			wantField: "marca",
			wantValue: "Nissan",
		},
		{
			name:      "direct field probe",
			raw:       `{litraje: 1.6`,
			wantField: "litraje",
			wantValue: "1.6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseToolArguments(tt.raw, testFields)
			if parsed.Stage != StageRecovered {
				t.Fatalf("expected recovered stage, got %s (%v)", parsed.Stage, parsed.Args)
			}
			if parsed.Args[LegacyFieldKey] != tt.wantField {
				t.Errorf("campo = %v, want %q", parsed.Args[LegacyFieldKey], tt.wantField)
			}
			if parsed.Args[LegacyValueKey] != tt.wantValue {
				t.Errorf("valor = %v, want %q", parsed.Args[LegacyValueKey], tt.wantValue)
			}
		})
	}
}

func TestParseToolArguments_InvalidReturnsEmptyObject(t *testing.T) {
	parsed := ParseToolArguments(`not-json`, testFields)

	if len(parsed.Args) != 0 {
		t.Fatalf("expected empty args for invalid input, got %v", parsed.Args)
	}
	if parsed.Stage != StageEmpty {
		t.Fatalf("expected empty stage, got %s", parsed.Stage)
	}
}

func TestParseToolArguments_NonObjectReturnsEmptyObject(t *testing.T) {
	parsed := ParseToolArguments(`["not","an","object"]`, testFields)

	if len(parsed.Args) != 0 {
		t.Fatalf("expected empty args for non-object input, got %v", parsed.Args)
	}
	if parsed.Stage != StageEmpty {
		t.Fatalf("expected empty stage, got %s", parsed.Stage)
	}
}
