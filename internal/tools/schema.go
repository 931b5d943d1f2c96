package tools

import (
	"encoding/json"
	"reflect"
	"strings"

	"credentialing/pkg/types"
)

type jsonSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]*jsonSchema `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
	Items      *jsonSchema            `json:"items,omitempty"`
	Enum       []string               `json:"enum,omitempty"`
	Format     string                 `json:"format,omitempty"`
	Nullable   bool                   `json:"-"`
}

// MarshalJSON renders nullable fields as a type union.
func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type plain jsonSchema
	if !s.Nullable {
		return json.Marshal((*plain)(s))
	}

	out := struct {
		*plain
		Type []string `json:"type"`
	}{plain: (*plain)(s), Type: []string{s.Type, "null"}}
	return json.Marshal(out)
}

// schemaFor derives an object schema from In's json and validate tags.
func schemaFor[In any]() json.RawMessage {
	var zero In
	schema := objectSchema(reflect.TypeOf(zero))
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return data
}

func objectSchema(t reflect.Type) *jsonSchema {
	schema := &jsonSchema{
		Type:       "object",
		Properties: map[string]*jsonSchema{},
		Required:   []string{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		rules := strings.Split(field.Tag.Get("validate"), ",")
		property := typeSchema(field.Type)
		for _, rule := range rules {
			if rule == "dive" {
				// rules after dive apply to elements
				break
			}
			switch rule {
			case "required":
				schema.Required = append(schema.Required, name)
			case "email":
				property.Format = "email"
			case "case_state":
				property.Enum = caseStateNames()
			case "decision":
				property.Enum = []string{string(types.DecisionApproved), string(types.DecisionRejected), string(types.DecisionWaiver)}
			}
		}
		if field.Tag.Get("nullable") == "true" {
			property.Nullable = true
		}

		schema.Properties[name] = property
	}

	return schema
}

func typeSchema(t reflect.Type) *jsonSchema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return &jsonSchema{Type: "boolean"}
	case reflect.Int, reflect.Int32, reflect.Int64:
		return &jsonSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonSchema{Type: "number"}
	case reflect.Slice:
		return &jsonSchema{Type: "array", Items: typeSchema(t.Elem())}
	case reflect.Map:
		return &jsonSchema{Type: "object"}
	case reflect.Struct:
		return objectSchema(t)
	}
	return &jsonSchema{Type: "string"}
}
