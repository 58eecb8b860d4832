package util

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ValidationError reports the first argument that does not match a tool's
// parameter schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives a JSON schema object from the exported fields of a
// struct. Field names follow the json tag; these tags refine a property:
//
//	description:"Where the user is"
//	minLength:"1"
//	enum:"kitchen,hallway"
//
// Fields are required unless they are pointers or tagged omitempty.
func CreateSchema(structType any) map[string]any {
	properties := make(map[string]any)
	schema := map[string]any{"type": "object", "properties": properties}

	t := reflect.TypeOf(structType)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, opts, skip := jsonName(field)
		if skip {
			continue
		}
		properties[name] = propertySchema(field)
		if !slices.Contains(opts, "omitempty") && field.Type.Kind() != reflect.Pointer {
			required = append(required, name)
		}
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func jsonName(field reflect.StructField) (string, []string, bool) {
	if !field.IsExported() {
		return "", nil, true
	}
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", nil, true
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}
	return name, parts[1:], false
}

func propertySchema(field reflect.StructField) map[string]any {
	prop := map[string]any{"type": jsonType(field.Type)}
	if d := field.Tag.Get("description"); d != "" {
		prop["description"] = d
	}
	if v := field.Tag.Get("minLength"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prop["minLength"] = n
		}
	}
	if v := field.Tag.Get("enum"); v != "" {
		prop["enum"] = strings.Split(v, ",")
	}
	return prop
}

// ValidateParameters checks params against a schema: required fields, the
// JSON type of each known property, minLength and enum. Unknown fields pass.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, name := range stringList(schema["required"]) {
		if _, ok := params[name]; !ok {
			return &ValidationError{Field: name, Message: "required field is missing"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range params {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(name, value, prop); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(name string, value any, prop map[string]any) error {
	expected, _ := prop["type"].(string)
	if !isValidType(value, expected) {
		return &ValidationError{Field: name, Value: value, Message: fmt.Sprintf("expected type %s, got %T", expected, value)}
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if minLen, ok := toInt(prop["minLength"]); ok && len(strings.TrimSpace(s)) < minLen {
		return &ValidationError{Field: name, Value: value, Message: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	if enum := stringList(prop["enum"]); len(enum) > 0 && !slices.Contains(enum, s) {
		return &ValidationError{Field: name, Value: value, Message: fmt.Sprintf("must be one of %s", strings.Join(enum, ", "))}
	}
	return nil
}

// stringList reads a list in either shape it appears in: []string from Go
// literals, []any from decoded JSON.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Pointer:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

// isValidType reports whether a decoded JSON value has the expected schema
// type. nil and unknown types pass.
func isValidType(value any, expected string) bool {
	if value == nil {
		return true
	}
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
