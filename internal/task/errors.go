package task

import "fmt"

// Stable error codes surfaced across the protocol boundary.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeStorage         = "STORAGE_ERROR"
	CodeParentCompleted = "PARENT_COMPLETED"
)

// Error is a domain error with a machine-readable code. Domain errors are
// normal business outcomes, not bugs; callers recover from them locally.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func errNotFound(id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("task not found: %s", id)}
}

func errValidation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func errStorage(cause error) *Error {
	return &Error{Code: CodeStorage, Message: "failed to access task store", cause: cause}
}

func errParentCompleted(parentID string) *Error {
	return &Error{
		Code:    CodeParentCompleted,
		Message: fmt.Sprintf("parent task is already completed: %s", ShortID(parentID)),
	}
}
