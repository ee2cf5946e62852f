package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire-level error codes.
const (
	CodeParseError       = "PARSE_ERROR"
	CodeNoHandler        = "NO_HANDLER"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeTimeout          = "TIMEOUT"
	CodeSocketError      = "SOCKET_ERROR"
)

// Request is one wire message from a client. Params is a flat string-keyed
// JSON object; each method decodes it into its own typed struct at the
// dispatch boundary.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// ResponseError carries a stable code plus a human message.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is one wire message back to a client, correlated by the
// originating request id.
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// Handler turns one request into one response.
type Handler func(Request) Response

// NewRequest builds a request with a fresh correlation id. params is
// marshalled into the flat wire object.
func NewRequest(method string, params any) (Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode params: %w", err)
	}
	return Request{
		ID:     uuid.NewString(),
		Method: method,
		Params: raw,
	}, nil
}

// NewResponse builds a success response carrying data.
func NewResponse(id string, data any) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return NewErrorResponse(id, CodeInternalError, fmt.Sprintf("failed to encode response: %v", err))
	}
	return Response{ID: id, Success: true, Data: raw}
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id, code, message string) Response {
	return Response{
		ID:      id,
		Success: false,
		Error:   &ResponseError{Code: code, Message: message},
	}
}

// Error is a transport failure on the client channel, or a coded error
// response relayed from the daemon.
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
