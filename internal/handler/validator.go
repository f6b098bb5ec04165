package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var accountPattern = regexp.MustCompile(`^\d{13,16}$`)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var customRules = map[string]validator.Func{
	"account": validateAccount,
	"amount":  validateAmount,
}

// NewValidator registers the custom rules used by request structs.
// It panics if a rule cannot be registered.
func NewValidator() *Validator {
	v := validator.New()
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("handler: register %q validation: %v", tag, err))
		}
	}
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "account":
			errs[field] = "Must be 13 to 16 digits"
		case "amount":
			errs[field] = "Must be a positive amount with at most two decimal places"
		case "oneof":
			errs[field] = fmt.Sprintf("Must be one of: %s", e.Param())
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}
	return errs
}

func validateAccount(fl validator.FieldLevel) bool {
	return accountPattern.MatchString(fl.Field().String())
}

func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Exponent() >= -2
}
