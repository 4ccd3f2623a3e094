package serrors

import "fmt"

// BaseError is a coded error suitable for the API boundary. Code is a stable
// machine-readable identifier, Message the human-readable default.
type BaseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, details string) *BaseError {
	return &BaseError{Code: code, Message: message, Details: details}
}

func NewFieldRequiredError(field string) *BaseError {
	return &BaseError{
		Code:    "FIELD_REQUIRED",
		Message: fmt.Sprintf("field %q is required", field),
		Details: field,
	}
}

func NewFieldNotAllowedError(field string) *BaseError {
	return &BaseError{
		Code:    "FIELD_NOT_ALLOWED",
		Message: fmt.Sprintf("field %q is not allowed here", field),
		Details: field,
	}
}
