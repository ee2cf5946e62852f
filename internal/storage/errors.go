package storage

import "fmt"

// Stable storage error codes. I/O failures are wrapped with their underlying
// cause preserved, never swallowed.
const (
	CodeCorruptedData  = "CORRUPTED_DATA"
	CodeWriteError     = "WRITE_ERROR"
	CodeFileNotFound   = "FILE_NOT_FOUND"
	CodeBackupNotFound = "BACKUP_NOT_FOUND"
)

// Error is a storage failure with a machine-readable code.
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

func errCorrupted(cause error) *Error {
	return &Error{Code: CodeCorruptedData, Message: "task store is corrupted", cause: cause}
}

func errWrite(cause error) *Error {
	return &Error{Code: CodeWriteError, Message: "failed to write task store", cause: cause}
}
