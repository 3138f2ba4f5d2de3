package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": "Asha", "age": 30}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"age": 30}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, validationErr.Errors[0].Message, "name")
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": "Asha", "age": "thirty"}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "age", validationErr.First().Field)
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": `)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.First().Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: "summary",
		Errors: []FieldError{
			{Field: "professional_summary", Message: "is required"},
			{Field: "work_experience.0.company", Message: "Invalid type"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation against summary failed")
	assert.Contains(t, msg, "1. professional_summary: is required")
	assert.Contains(t, msg, "2. work_experience.0.company: Invalid type")
}

func TestValidationError_FirstEmpty(t *testing.T) {
	assert.Equal(t, FieldError{}, (&ValidationError{}).First())
}

func TestSchemaLoadError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &SchemaLoadError{Name: "x", Message: "bad", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load schema x: bad: boom", err.Error())
}
