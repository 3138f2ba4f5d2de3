package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("message_type", func(fl validator.FieldLevel) bool {
		return MessageType(fl.Field().String()).Valid()
	})
	return v
}

// FieldErrors flattens a validator error into field/message pairs keyed by JSON name.
// Errors that did not come from the validator yield a single entry with an empty field.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: describe(fe)})
	}
	return out
}

// FieldError is a single struct validation failure.
type FieldError struct {
	Field   string
	Message string
}

func fieldPath(namespace string) string {
	// Drop the leading type name ("Summary.work_experience[0].company").
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "message_type":
		return "must be one of the supported message types"
	}
	return "failed " + fe.Tag() + " validation"
}
