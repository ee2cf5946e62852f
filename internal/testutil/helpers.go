// Package testutil provides reusable helpers for yaru tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupHome points HOME at an isolated temp directory and returns it.
// t.Setenv restores the original value after the test.
func SetupHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("YARU_DATA_DIR", "")
	t.Setenv("YARU_SOCKET_PATH", "")
	return home
}

// SocketPath returns a socket path inside a short-lived temp directory.
// t.TempDir paths can exceed the unix socket path length limit on some
// platforms, so this uses the system temp root directly.
func SocketPath(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "yaru")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}
