package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func notBlankValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}

func shareTokenValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return false
	}
	return id != uuid.Nil
}
