package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/testutil"
)

func TestDefaults(t *testing.T) {
	home := testutil.SetupHome(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(home, ".yaru"); cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
	if want := filepath.Join(home, ".yaru", "daemon.sock"); cfg.SocketPath != want {
		t.Errorf("SocketPath = %q, want %q", cfg.SocketPath, want)
	}
	if cfg.ClientTimeout != 5*time.Second {
		t.Errorf("ClientTimeout = %v, want 5s", cfg.ClientTimeout)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	home := testutil.SetupHome(t)

	dir := filepath.Join(home, ".yaru")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "data_dir: /srv/yaru\nclient_timeout: 10s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/srv/yaru" {
		t.Errorf("DataDir = %q, want /srv/yaru", cfg.DataDir)
	}
	if cfg.ClientTimeout != 10*time.Second {
		t.Errorf("ClientTimeout = %v, want 10s", cfg.ClientTimeout)
	}
	// Socket path keeps its default when the file does not set it.
	if want := filepath.Join(home, ".yaru", "daemon.sock"); cfg.SocketPath != want {
		t.Errorf("SocketPath = %q, want %q", cfg.SocketPath, want)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := testutil.SetupHome(t)

	dir := filepath.Join(home, ".yaru")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data_dir: /from/file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(config.EnvDataDir, "/from/env")
	t.Setenv(config.EnvSocketPath, "/from/env/d.sock")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want /from/env", cfg.DataDir)
	}
	if cfg.SocketPath != "/from/env/d.sock" {
		t.Errorf("SocketPath = %q, want /from/env/d.sock", cfg.SocketPath)
	}
}

func TestWriteDefault(t *testing.T) {
	home := testutil.SetupHome(t)

	path := filepath.Join(home, ".yaru", "config.yaml")
	if err := config.WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// The written file must load back cleanly.
	if _, err := config.Load(); err != nil {
		t.Fatalf("Load after WriteDefault: %v", err)
	}
}
