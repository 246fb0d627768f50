package errors

import (
	"fmt"
	"maps"
	"strings"
)

// AppError is the error type of every graphx failure and diagnostic. Fatal
// errors abort a run; the rest are recorded as diagnostics and the run goes on.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Fatal   bool           `json:"fatal"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e.Details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New creates a new AppError; fatality follows the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Fatal:   !IsRecoverableCode(code),
	}
}

// CyclicGraph creates an error for a chain that transitively depends on itself.
func CyclicGraph(node string) *AppError {
	return &AppError{
		Code: ErrCodeCyclicGraph, Message: fmt.Sprintf("chain %q depends on itself", node),
		Fatal: true, Details: map[string]any{"node": node},
	}
}

// UnknownInput creates an error for a run missing a named input.
func UnknownInput(name string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownInput, Message: fmt.Sprintf("named input %q was not supplied", name),
		Fatal: true, Details: map[string]any{"input": name},
	}
}

// UnknownFunction creates an error for an unregistered function name.
func UnknownFunction(kind, name string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownFunction, Message: fmt.Sprintf("%s function %q is not registered", kind, name),
		Fatal: true, Details: map[string]any{"kind": kind, "name": name},
	}
}

// InvalidStrategy creates an error for an unsupported join strategy.
func InvalidStrategy(strategy string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidStrategy, Message: fmt.Sprintf("unknown join strategy %q", strategy),
		Fatal: true, Details: map[string]any{"strategy": strategy},
	}
}

// MapperFailure creates an error for a user function failing on the record
// (or group) at index.
func MapperFailure(operation string, index int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMapperFailure, Message: fmt.Sprintf("%s failed at index %d", operation, index),
		Fatal: true, Details: map[string]any{"operation": operation, "index": index}, Cause: cause,
	}
}

// InvalidRecord creates an error for a malformed input record.
func InvalidRecord(input string, line int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRecord, Message: fmt.Sprintf("input %q: malformed record on line %d", input, line),
		Fatal: true, Details: map[string]any{"input": input, "line": line}, Cause: cause,
	}
}

// SortPrecondition creates a diagnostic for grouped input that is not sorted.
func SortPrecondition(operation string, keys []string) *AppError {
	return &AppError{
		Code:    ErrCodeSortPrecondition,
		Message: fmt.Sprintf("%s input is not sorted by [%s]; result is unreliable", operation, strings.Join(keys, ", ")),
		Details: map[string]any{"operation": operation, "keys": keys},
	}
}

// MissingSortKey creates a diagnostic for sort keys absent from the data.
func MissingSortKey(missing, used []string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingSortKey,
		Message: fmt.Sprintf("sort keys [%s] are missing from some records; sorting by [%s]", strings.Join(missing, ", "), strings.Join(used, ", ")),
		Details: map[string]any{"missing": missing, "used": used},
	}
}

// Validation creates an error for invalid configuration or job definitions.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message, Fatal: true}
}

// InvalidInput creates an error for a single invalid field.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Fatal: true, Details: details,
	}
}

// Internal creates an error for an unexpected engine failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected engine error occurred",
		Fatal: true, Cause: cause,
	}
}
