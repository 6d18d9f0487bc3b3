package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// New builds the validator shared by all handlers. The extra "handle" tag
// enforces the account/character name character set.
func New() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRe.MatchString(fl.Field().String())
	})

	return validate
}
