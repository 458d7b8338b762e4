package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, preserving the original code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err (or any wrapped cause) carries the given code
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid       = "CONFIGURATION_ERROR"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeParseError          = "PARSE_ERROR"
	CodeProviderError       = "PROVIDER_ERROR"
	CodeInvalidResponse     = "INVALID_RESPONSE"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeAgentNotFound       = "AGENT_NOT_FOUND"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

// ValidationError reports a payload that does not satisfy its contract.
// The field path is part of the message so callers can surface it directly.
func ValidationError(fieldPath, reason string) *AppError {
	return New(CodeValidationError, fmt.Sprintf("field %s: %s", fieldPath, reason))
}

// ParseError reports LLM output that could not be structurally extracted.
// The raw text is retained on the error for diagnosis.
func ParseError(message string, raw string) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: message,
		Cause:   fmt.Errorf("raw response: %s", raw),
	}
}

func ProviderError(provider string, cause error) *AppError {
	return &AppError{
		Code:    CodeProviderError,
		Message: fmt.Sprintf("%s provider error", provider),
		Cause:   cause,
	}
}

func InvalidResponse(message string) *AppError {
	return New(CodeInvalidResponse, message)
}

func InsufficientCredits(balance int) *AppError {
	return New(CodeInsufficientCredits, fmt.Sprintf("insufficient credits: balance %d, required 1", balance))
}

func AgentNotFound(agentType string) *AppError {
	return New(CodeAgentNotFound, fmt.Sprintf("agent type %q is not registered", agentType))
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
