package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"credentialing/pkg/types"

	"github.com/go-playground/validator/v10"
)

// Tool is one named operation on the dispatch boundary.
type Tool struct {
	Name        string
	Description string
	Mutating    bool
	Schema      json.RawMessage

	decode func(v *validator.Validate, args map[string]any) (any, error)
	handle func(ctx context.Context, r *Registry, input any, principal *types.Principal) (any, error)
}

// newTool binds a handler to its input type. The handler receives a decoded,
// validated input; principal is non-nil for mutating tools.
func newTool[In any](name, description string, mutating bool,
	handler func(ctx context.Context, r *Registry, in *In, principal *types.Principal) (any, error),
) *Tool {
	return &Tool{
		Name:        name,
		Description: description,
		Mutating:    mutating,
		Schema:      schemaFor[In](),
		decode: func(v *validator.Validate, args map[string]any) (any, error) {
			return decodeInput[In](v, name, args)
		},
		handle: func(ctx context.Context, r *Registry, input any, principal *types.Principal) (any, error) {
			return handler(ctx, r, input.(*In), principal)
		},
	}
}

func decodeInput[In any](v *validator.Validate, tool string, args map[string]any) (*In, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, newValidationError(tool, "arguments are not serializable")
	}

	in := new(In)
	if err := json.Unmarshal(data, in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, newValidationError(tool, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
		}
		return nil, newValidationError(tool, err.Error())
	}

	if err := v.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, newValidationError(tool, err.Error())
		}

		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
		return nil, newValidationError(tool, problems...)
	}

	return in, nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "case_state":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(caseStateNames(), ", "))
	case "decision":
		return fmt.Sprintf("%s must be one of approved, rejected, waiver", fe.Field())
	case "dive":
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so errors match what the caller sent.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("case_state", func(fl validator.FieldLevel) bool {
		return types.CaseState(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		return types.Decision(fl.Field().String()).Valid()
	})

	return v
}

func caseStateNames() []string {
	names := make([]string, 0, len(types.CaseStates))
	for _, state := range types.CaseStates {
		names = append(names, string(state))
	}
	return names
}
