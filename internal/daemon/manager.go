package daemon

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/ipc"
)

// Process lifecycle error codes.
const (
	CodeAlreadyRunning = "ALREADY_RUNNING"
	CodeNotRunning     = "NOT_RUNNING"
	CodeStartFailed    = "START_FAILED"
	CodeStopFailed     = "STOP_FAILED"
)

// Error is a daemon lifecycle failure with a machine-readable code.
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

const recordFileName = "daemon.json"

// startGrace bounds the wait for a freshly spawned daemon's socket to become
// reachable; stopGrace bounds each wait for a stopping daemon to exit.
const (
	startGrace   = 2 * time.Second
	stopGrace    = 2 * time.Second
	pollInterval = 50 * time.Millisecond
)

// Info is the side record a running daemon leaves behind so later
// invocations can find it.
type Info struct {
	PID        int       `json:"pid"`
	SocketPath string    `json:"socketPath"`
	StartedAt  time.Time `json:"startedAt"`
}

// Status reports whether a daemon is running, and its record when it is.
type Status struct {
	Running bool  `json:"running"`
	Info    *Info `json:"info,omitempty"`
}

// Manager owns the daemon lifecycle: discovering a running instance,
// spawning a detached one, stopping it, and reporting status.
type Manager struct {
	dataDir    string
	socketPath string
	timeout    time.Duration
}

// NewManager returns a manager operating on the configured data directory
// and endpoint.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		dataDir:    cfg.DataDir,
		socketPath: cfg.SocketPath,
		timeout:    cfg.ClientTimeout,
	}
}

func (m *Manager) recordPath() string {
	return filepath.Join(m.dataDir, recordFileName)
}

func (m *Manager) readRecord() *Info {
	data, err := os.ReadFile(m.recordPath())
	if err != nil {
		return nil
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}

func (m *Manager) writeRecord(info *Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.recordPath(), data, 0o644)
}

func (m *Manager) removeRecord() {
	os.Remove(m.recordPath())
}

// processAlive probes the OS process table with a zero-effect signal.
// Any failure, including "no such process", means dead.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Start spawns a detached daemon process unless one is already running.
// Starting is idempotent: a live recorded pid yields ALREADY_RUNNING, never
// a duplicate daemon.
func (m *Manager) Start() (*Info, error) {
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return nil, &Error{Code: CodeStartFailed, Message: "failed to create data directory", cause: err}
	}

	if rec := m.readRecord(); rec != nil {
		if processAlive(rec.PID) {
			return nil, &Error{
				Code:    CodeAlreadyRunning,
				Message: fmt.Sprintf("daemon already running (pid %d)", rec.PID),
			}
		}
		m.removeRecord()
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, &Error{Code: CodeStartFailed, Message: "failed to resolve executable path", cause: err}
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return nil, &Error{Code: CodeStartFailed, Message: "failed to open /dev/null", cause: err}
	}
	defer devNull.Close()

	// Detach: new session, silenced stdio, released handle. The child's
	// lifetime is not bound to ours.
	cmd := exec.Command(exe, "serve")
	cmd.Env = append(os.Environ(),
		config.EnvDataDir+"="+m.dataDir,
		config.EnvSocketPath+"="+m.socketPath,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		return nil, &Error{Code: CodeStartFailed, Message: "failed to spawn daemon", cause: err}
	}

	info := &Info{
		PID:        cmd.Process.Pid,
		SocketPath: m.socketPath,
		StartedAt:  time.Now().UTC(),
	}
	if err := m.writeRecord(info); err != nil {
		return nil, &Error{Code: CodeStartFailed, Message: "failed to write daemon record", cause: err}
	}
	cmd.Process.Release()

	m.waitReachable(startGrace)
	return info, nil
}

// waitReachable polls the endpoint until it accepts a connection or the
// grace period elapses.
func (m *Manager) waitReachable(grace time.Duration) {
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("unix", m.socketPath, pollInterval)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(pollInterval)
	}
}

// Stop asks a running daemon to exit gracefully over the protocol, then
// escalates to SIGTERM and finally SIGKILL if it lingers. The side record is
// always discarded on the success path.
func (m *Manager) Stop() error {
	rec := m.readRecord()
	if rec == nil {
		return &Error{Code: CodeNotRunning, Message: "daemon is not running"}
	}
	if !processAlive(rec.PID) {
		m.removeRecord()
		return &Error{Code: CodeNotRunning, Message: "daemon is not running"}
	}

	if client, err := ipc.Dial(rec.SocketPath, m.timeout); err == nil {
		client.Call("daemon.stop", struct{}{}, nil)
		client.Close()
	}

	if m.waitExit(rec.PID, stopGrace) {
		m.removeRecord()
		return nil
	}

	if err := syscall.Kill(rec.PID, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return &Error{Code: CodeStopFailed, Message: "failed to signal daemon", cause: err}
	}
	if !m.waitExit(rec.PID, stopGrace) {
		if err := syscall.Kill(rec.PID, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
			return &Error{Code: CodeStopFailed, Message: "failed to kill daemon", cause: err}
		}
		m.waitExit(rec.PID, stopGrace)
	}

	m.removeRecord()
	return nil
}

func (m *Manager) waitExit(pid int, grace time.Duration) bool {
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		time.Sleep(pollInterval)
	}
	return !processAlive(pid)
}

// CurrentStatus reports whether a daemon is running. A record naming a dead
// pid is stale; it is discarded as a side effect and reported as not
// running, never as a failure.
func (m *Manager) CurrentStatus() Status {
	rec := m.readRecord()
	if rec == nil {
		return Status{Running: false}
	}
	if !processAlive(rec.PID) {
		m.removeRecord()
		return Status{Running: false}
	}
	return Status{Running: true, Info: rec}
}
