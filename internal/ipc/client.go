package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"time"
)

// DefaultTimeout bounds both connecting and awaiting a response.
const DefaultTimeout = 5 * time.Second

// Client is a short-lived connector: open, send one framed request at a
// time, await the correlated response, close.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to a daemon socket. A connect that exceeds timeout is
// TIMEOUT; a refused or missing socket is CONNECTION_FAILED.
func Dial(socketPath string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, &Error{Code: CodeTimeout, Message: "timed out connecting to daemon", cause: err}
		}
		return nil, &Error{Code: CodeConnectionFailed, Message: "failed to connect to daemon", cause: err}
	}
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Call sends one request and blocks until the matching response arrives or
// the timeout elapses. Responses whose correlation id does not match the
// outstanding request are skipped. When result is non-nil the response data
// is decoded into it.
func (c *Client) Call(method string, params any, result any) error {
	req, err := NewRequest(method, params)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return &Error{Code: CodeSocketError, Message: "failed to set deadline", cause: err}
	}
	if _, err := c.conn.Write(payload); err != nil {
		return wrapStreamError(err, "failed to send request")
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return wrapStreamError(err, "failed to read response")
		}

		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			// Not a frame we understand; keep waiting for ours.
			continue
		}
		if resp.ID != req.ID {
			continue
		}

		if !resp.Success {
			code, message := CodeInternalError, "unknown error"
			if resp.Error != nil {
				code, message = resp.Error.Code, resp.Error.Message
			}
			return &Error{Code: code, Message: message}
		}
		if result != nil && len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, result); err != nil {
				return &Error{Code: CodeSocketError, Message: "failed to decode response data", cause: err}
			}
		}
		return nil
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func wrapStreamError(err error, message string) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return &Error{Code: CodeTimeout, Message: "timed out waiting for daemon response", cause: err}
	}
	return &Error{Code: CodeSocketError, Message: message, cause: err}
}
