package shared

import (
	"errors"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped variants compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, Details: e.Details, Err: e.Err}
}

// Wrap returns a copy of the error carrying cause as the underlying error
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: e.Details, Err: cause}
}

// NewValidationError builds a validation error with field-level details
func NewValidationError(details ...FieldError) *DomainError {
	msg := ErrValidation.Message
	if len(details) == 1 {
		msg = details[0].Message
	} else if len(details) > 1 {
		parts := make([]string, 0, len(details))
		for _, d := range details {
			parts = append(parts, d.Field)
		}
		msg = "Invalid fields: " + strings.Join(parts, ", ")
	}
	return &DomainError{Code: ErrValidation.Code, Message: msg, Details: details}
}

// CodeOf returns the domain error code of err, or "" when err is not a domain error
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrValidation              = NewDomainError("VALIDATION_FAILED", "Invalid input provided")
	ErrNotFound                = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidState            = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrDeclarationRequired     = NewDomainError("DECLARATION_REQUIRED", "Declaration must be accepted")
	ErrCommentRequired         = NewDomainError("COMMENT_REQUIRED", "A comment is required")
	ErrMissingRequiredDocument = NewDomainError("MISSING_REQUIRED_DOCUMENT", "Required document is missing")
	ErrConflict                = NewDomainError("CONFLICT", "Resource already exists")
	ErrProvider                = NewDomainError("PROVIDER_ERROR", "Verification provider failed")
	ErrProviderTimeout         = NewDomainError("PROVIDER_TIMEOUT", "Verification provider timed out")
	ErrPersistence             = NewDomainError("PERSISTENCE_ERROR", "Failed to access storage")
)
