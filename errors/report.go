package errors

import (
	stderrors "errors"
)

// Report is the JSON structure used when errors are written for tooling.
type Report struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Fatal   bool           `json:"fatal"`
	Details map[string]any `json:"details,omitempty"`
	Cause   string         `json:"cause,omitempty"`
}

// ToReport converts an AppError to a Report for serialization.
func (e *AppError) ToReport() Report {
	r := Report{
		Code:    e.Code,
		Message: e.Message,
		Fatal:   e.Fatal,
		Details: e.Details,
	}
	if e.Cause != nil {
		r.Cause = e.Cause.Error()
	}
	return r
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsFatal reports whether err aborts a run. Errors that are not AppErrors
// are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Fatal
	}
	return true
}

// Wrap converts any error into an AppError, keeping existing AppErrors.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
