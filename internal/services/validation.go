package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match what the client sent
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks the struct's validate tags and converts failures into a
// ValidationError with a readable message.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &ValidationError{Message: err.Error()}
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describeFieldError(fe))
	}
	return &ValidationError{Message: "Validation error: " + strings.Join(messages, "; ")}
}

func describeFieldError(fe validator.FieldError) string {
	switch {
	case fe.Field() == "ingredients" && fe.Tag() == "min":
		return `Please add at least one ingredient at "ingredients"`
	case fe.Tag() == "min" && fe.Kind() == reflect.Slice:
		return fmt.Sprintf(`Array must contain at least %s element(s) at "%s"`, fe.Param(), fe.Field())
	case fe.Tag() == "required":
		return fmt.Sprintf(`Required at "%s"`, fe.Field())
	default:
		return fmt.Sprintf(`Failed %q check at "%s"`, fe.Tag(), fe.Field())
	}
}
