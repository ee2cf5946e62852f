package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// maxLineSize bounds a single framed message.
const maxLineSize = 1 << 20

// Server accepts connections on a unix domain socket and serves framed
// requests. One goroutine per connection; requests on a connection are
// handled sequentially.
type Server struct {
	handler Handler
	logger  *log.Logger

	mu     sync.Mutex
	ln     net.Listener
	path   string
	closed bool
}

// NewServer returns a server dispatching to handler. logger may be nil.
func NewServer(handler Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{handler: handler, logger: logger}
}

// Listen binds the socket, removing any stale socket file left behind by a
// previous daemon.
func (s *Server) Listen(socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", socketPath, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.path = socketPath
	s.closed = false
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server is not listening")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting and removes the socket file. Connections already
// accepted finish on their own.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil || s.closed {
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	if s.path != "" {
		os.Remove(s.path)
	}
	return err
}

// handleConn frames the byte stream into newline-delimited messages and
// loops read → dispatch → write. A malformed line degrades to a single
// PARSE_ERROR response; the connection keeps reading.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	enc := json.NewEncoder(conn)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("unparseable request", "err", err)
			if err := enc.Encode(NewErrorResponse("unknown", CodeParseError, "invalid message format")); err != nil {
				return
			}
			continue
		}

		if s.handler == nil {
			if err := enc.Encode(NewErrorResponse(req.ID, CodeNoHandler, "request handler is not configured")); err != nil {
				return
			}
			continue
		}

		resp := s.dispatch(req)
		if err := enc.Encode(resp); err != nil {
			s.logger.Warn("failed to write response", "method", req.Method, "err", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Debug("connection read error", "err", err)
	}
}

// dispatch invokes the handler, converting a panic into an INTERNAL_ERROR
// response instead of letting it take down the connection or the process.
func (s *Server) dispatch(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", "method", req.Method, "panic", r)
			resp = NewErrorResponse(req.ID, CodeInternalError, fmt.Sprintf("%v", r))
		}
	}()
	return s.handler(req)
}
