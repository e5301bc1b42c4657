package registration

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ippis/backend/internal/domain/shared"
)

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	ninPattern    = regexp.MustCompile(`^\d{11}$`)

	// Accepted input layouts for dates; values are stored as YYYY-MM-DD.
	dateLayouts = []string{"2006-01-02", time.RFC3339, "02-01-2006", "02/01/2006", "2006/01/02"}

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations adds the digits, nin and ippis_date rules to v
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"digits": func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		},
		"nin": func(fl validator.FieldLevel) bool {
			return IsValidNIN(fl.Field().String())
		},
		"ippis_date": func(fl validator.FieldLevel) bool {
			_, ok := NormalizeDate(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// IsValidNIN reports whether token is an 11-digit national identity number
func IsValidNIN(token string) bool {
	return ninPattern.MatchString(strings.TrimSpace(token))
}

// NormalizeDate parses s using the accepted layouts and returns it as YYYY-MM-DD
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// validateStruct runs struct-tag validation and converts failures to a domain validation error
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.ErrValidation.Wrap(err)
	}
	details := make([]shared.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, shared.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return shared.NewValidationError(details...)
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "len":
		return field + " must be exactly " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "digits":
		return field + " must contain only numbers"
	case "ippis_date":
		return field + " must be a valid date (YYYY-MM-DD)"
	case "nin":
		return field + " must be exactly 11 digits"
	default:
		return field + " is invalid"
	}
}

func trimFields(ptrs ...*string) {
	for _, p := range ptrs {
		*p = strings.TrimSpace(*p)
	}
}
