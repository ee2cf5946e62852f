package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Cer0un0/yaru/internal/testutil"
)

func startServer(t *testing.T, handler Handler) string {
	t.Helper()

	path := testutil.SocketPath(t)
	srv := NewServer(handler, nil)
	if err := srv.Listen(path); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return path
}

func echoHandler(req Request) Response {
	return NewResponse(req.ID, map[string]string{"method": req.Method})
}

func ipcCode(t *testing.T, err error) string {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *ipc.Error, got %v", err)
	}
	return e.Code
}

func TestCallRoundTrip(t *testing.T) {
	path := startServer(t, echoHandler)

	client, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	var data map[string]string
	if err := client.Call("task.list", map[string]string{}, &data); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if data["method"] != "task.list" {
		t.Errorf("expected method echo, got %v", data)
	}
}

func TestSequentialCallsOnOneConnection(t *testing.T) {
	path := startServer(t, echoHandler)

	client, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	for _, method := range []string{"a", "b", "c"} {
		var data map[string]string
		if err := client.Call(method, struct{}{}, &data); err != nil {
			t.Fatalf("Call %s: %v", method, err)
		}
		if data["method"] != method {
			t.Errorf("expected %s, got %v", method, data)
		}
	}
}

func TestMalformedLineDoesNotKillConnection(t *testing.T) {
	path := startServer(t, echoHandler)

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("this is not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success || resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Fatalf("expected PARSE_ERROR, got %+v", resp)
	}

	// The connection must keep serving after a bad frame.
	req, _ := NewRequest("still.alive", struct{}{})
	payload, _ := json.Marshal(req)
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err = reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read after bad frame: %v", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.ID != req.ID {
		t.Fatalf("expected success for %s, got %+v", req.ID, resp)
	}
}

func TestNilHandler(t *testing.T) {
	path := startServer(t, nil)

	client, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	err = client.Call("anything", struct{}{}, nil)
	if ipcCode(t, err) != CodeNoHandler {
		t.Fatalf("expected NO_HANDLER, got %v", err)
	}
}

func TestPanickingHandler(t *testing.T) {
	path := startServer(t, func(req Request) Response {
		panic("handler exploded")
	})

	client, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	err = client.Call("boom", struct{}{}, nil)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *ipc.Error, got %v", err)
	}
	if e.Code != CodeInternalError || e.Message != "handler exploded" {
		t.Fatalf("expected INTERNAL_ERROR with panic message, got %+v", e)
	}

	// The connection survives a panicking handler.
	if err := client.Call("boom", struct{}{}, nil); errors.As(err, &e) && e.Code != CodeInternalError {
		t.Fatalf("connection did not survive: %v", err)
	}
}

func TestMismatchedCorrelationIDIgnored(t *testing.T) {
	path := testutil.SocketPath(t)
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	// A server that answers with a stranger's response first.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			return
		}
		enc := json.NewEncoder(conn)
		enc.Encode(NewResponse("someone-else", map[string]string{"v": "wrong"}))
		enc.Encode(NewResponse(req.ID, map[string]string{"v": "right"}))
	}()

	client, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	var data map[string]string
	if err := client.Call("m", struct{}{}, &data); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if data["v"] != "right" {
		t.Fatalf("expected the correlated response, got %v", data)
	}
}

func TestDialMissingSocket(t *testing.T) {
	_, err := Dial(testutil.SocketPath(t), 200*time.Millisecond)
	if ipcCode(t, err) != CodeConnectionFailed {
		t.Fatalf("expected CONNECTION_FAILED, got %v", err)
	}
}

func TestCallTimeout(t *testing.T) {
	path := testutil.SocketPath(t)
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	// Accept and never answer.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}()

	client, err := Dial(path, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	err = client.Call("slow", struct{}{}, nil)
	if ipcCode(t, err) != CodeTimeout {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestServerRemovesStaleSocketFile(t *testing.T) {
	path := testutil.SocketPath(t)

	first := NewServer(echoHandler, nil)
	if err := first.Listen(path); err != nil {
		t.Fatalf("first Listen: %v", err)
	}
	// Close the listener but leave nothing behind to clean up manually;
	// a second bind on the same path must succeed.
	first.Close()

	second := NewServer(echoHandler, nil)
	if err := second.Listen(path); err != nil {
		t.Fatalf("second Listen: %v", err)
	}
	second.Close()
}
