package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewAnalysisRequestValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("notblank", notBlankValidator),
		},
	}
}

func NewShareValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("share_token", shareTokenValidator),
		},
	}
}
