package daemon

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/testutil"
)

// deadPID is far above any real pid_max, so the liveness probe always
// reports it as dead.
const deadPID = 1 << 30

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:       dir,
		SocketPath:    testutil.SocketPath(t),
		ClientTimeout: 500 * time.Millisecond,
	}
	return NewManager(cfg), dir
}

func writeTestRecord(t *testing.T, dir string, pid int) {
	t.Helper()
	info := Info{PID: pid, SocketPath: "/tmp/ignored.sock", StartedAt: time.Now().UTC()}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "daemon.json"), data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func managerCode(t *testing.T, err error) string {
	t.Helper()
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *daemon.Error, got %v", err)
	}
	return de.Code
}

func TestStatusWithoutRecord(t *testing.T) {
	m, _ := newTestManager(t)

	st := m.CurrentStatus()
	if st.Running {
		t.Fatalf("expected not running, got %+v", st)
	}
}

func TestStatusWithLivePID(t *testing.T) {
	m, dir := newTestManager(t)
	writeTestRecord(t, dir, os.Getpid())

	st := m.CurrentStatus()
	if !st.Running {
		t.Fatal("expected running")
	}
	if st.Info.PID != os.Getpid() {
		t.Errorf("expected pid %d, got %d", os.Getpid(), st.Info.PID)
	}
}

func TestStatusDiscardsStaleRecord(t *testing.T) {
	m, dir := newTestManager(t)
	writeTestRecord(t, dir, deadPID)

	st := m.CurrentStatus()
	if st.Running {
		t.Fatalf("expected not running, got %+v", st)
	}
	if _, err := os.Stat(filepath.Join(dir, "daemon.json")); !os.IsNotExist(err) {
		t.Error("stale record was not discarded")
	}
}

func TestStatusWithUnparseableRecord(t *testing.T) {
	m, dir := newTestManager(t)
	if err := os.WriteFile(filepath.Join(dir, "daemon.json"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if st := m.CurrentStatus(); st.Running {
		t.Fatalf("expected not running, got %+v", st)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	m, dir := newTestManager(t)
	writeTestRecord(t, dir, os.Getpid())

	_, err := m.Start()
	if code := managerCode(t, err); code != CodeAlreadyRunning {
		t.Fatalf("expected ALREADY_RUNNING, got %v", err)
	}

	// Same pid reported on the repeat attempt.
	_, err = m.Start()
	var de *Error
	if !errors.As(err, &de) || de.Code != CodeAlreadyRunning {
		t.Fatalf("second start: %v", err)
	}
}

func TestStopWithoutRecord(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Stop()
	if code := managerCode(t, err); code != CodeNotRunning {
		t.Fatalf("expected NOT_RUNNING, got %v", err)
	}
}

func TestStopDiscardsStaleRecord(t *testing.T) {
	m, dir := newTestManager(t)
	writeTestRecord(t, dir, deadPID)

	err := m.Stop()
	if code := managerCode(t, err); code != CodeNotRunning {
		t.Fatalf("expected NOT_RUNNING, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "daemon.json")); !os.IsNotExist(err) {
		t.Error("stale record was not discarded")
	}
}

func TestProcessAlive(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Error("own pid should be alive")
	}
	if processAlive(deadPID) {
		t.Error("absurd pid should be dead")
	}
	if processAlive(0) || processAlive(-1) {
		t.Error("non-positive pids are never alive")
	}
}
