package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var seasonCodeRe = regexp.MustCompile(`^W\d{2}-\d{4}-[A-Z]{3}$`)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like coupon codes that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// "seasoncode" matches the W<NN>-<YYYY>-<MON> partition key format
	_ = v.RegisterValidation("seasoncode", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return seasonCodeRe.MatchString(str)
	})

	return v
}
