package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/interfaces/http/dto"
)

// SetupValidator makes gin's binding validator report json/form field names
// and teaches it the registration rules (nin, digits, ippis_date).
// It panics if a rule cannot be registered.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := registration.RegisterValidations(v); err != nil {
			panic(err)
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FieldErrors converts binding errors into field-level details
func FieldErrors(err error) []shared.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]shared.FieldError, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, shared.FieldError{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleValidationError writes a 400 validation response for a binding error
func HandleValidationError(c *gin.Context, err error) {
	details := FieldErrors(err)
	if details == nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Malformed request body", GetRequestID(c)))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "numeric":
		return "Must be numeric"
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "nin":
		return "Must be exactly 11 digits"
	case "digits":
		return "Must contain only numbers"
	case "ippis_date":
		return "Must be a valid date (YYYY-MM-DD)"
	default:
		return "Invalid value"
	}
}
