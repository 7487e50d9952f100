package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/nachoal/parts-agent-go/llm"
)

// Generator builds JSON schemas for function parameters from tagged structs.
//
// Supported tags:
//
//	json:"name,omitempty"   property name; without omitempty the property is required
//	description:"..."       property description
//	schema:"required,enum:a|b,min:N,max:N"
//
// On strings min and max bound the length, on integers the value.
type Generator struct{}

// NewGenerator creates a new schema generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a JSON schema from a parameter struct or pointer to one
func (g *Generator) Generate(v interface{}) (map[string]interface{}, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("expected struct, got nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}
	return g.object(t), nil
}

// FunctionTool creates an OpenAI-compatible function declaration
func (g *Generator) FunctionTool(name, description string, params interface{}) (llm.Tool, error) {
	schema, err := g.Generate(params)
	if err != nil {
		return llm.Tool{}, fmt.Errorf("schema for %s: %w", name, err)
	}

	return llm.Tool{
		Type: "function",
		Function: llm.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
	}, nil
}

func (g *Generator) object(t reflect.Type) map[string]interface{} {
	properties := make(map[string]interface{})
	required := []string{}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitempty, skip := jsonName(field)
		if skip {
			continue
		}

		tag := field.Tag.Get("schema")
		if !omitempty || hasOption(tag, "required") {
			required = append(required, name)
		}

		prop := g.property(field.Type)
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		applyConstraints(tag, prop)
		properties[name] = prop
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func (g *Generator) property(t reflect.Type) map[string]interface{} {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.object(t)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return map[string]interface{}{"type": "integer"}
	default:
		// every other field reaches the model as text
		return map[string]interface{}{"type": "string"}
	}
}

func applyConstraints(tag string, prop map[string]interface{}) {
	isString := prop["type"] == "string"

	for _, opt := range strings.Split(tag, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(opt), ":")
		if !found {
			continue
		}

		switch key {
		case "enum":
			prop["enum"] = strings.Split(value, "|")
		case "min", "max":
			n, err := strconv.Atoi(value)
			if err != nil {
				continue
			}
			prop[boundKey(key, isString)] = n
		}
	}
}

func boundKey(key string, isString bool) string {
	switch {
	case key == "min" && isString:
		return "minLength"
	case key == "max" && isString:
		return "maxLength"
	case key == "min":
		return "minimum"
	default:
		return "maximum"
	}
}

func hasOption(tag, option string) bool {
	for _, opt := range strings.Split(tag, ",") {
		if strings.TrimSpace(opt) == option {
			return true
		}
	}
	return false
}

// jsonName returns the property name and whether the field is optional
func jsonName(field reflect.StructField) (name string, omitempty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}
