package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrInvalidField struct {
	error
	// Fields lists the names of the fields that failed validation.
	Fields []string
}

func NewErrInvalidField(err error) *ErrInvalidField {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ErrInvalidField{error: err}
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Field())
	}
	return &ErrInvalidField{
		error:  fmt.Errorf("invalid fields: %s", strings.Join(fields, ", ")),
		Fields: fields,
	}
}
