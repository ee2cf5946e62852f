// Package daemon contains the long-running server process and the manager
// that controls its lifecycle from short-lived client invocations.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Cer0un0/yaru/internal/ipc"
	"github.com/Cer0un0/yaru/internal/storage"
	"github.com/Cer0un0/yaru/internal/task"
)

// Options configures a daemon process. Both fields are mandatory; the
// daemon refuses to start without them.
type Options struct {
	DataDir    string
	SocketPath string
}

// Run wires storage, the task service and the socket server together and
// serves until a stop request or a termination signal arrives.
func Run(opts Options) error {
	if opts.DataDir == "" || opts.SocketPath == "" {
		return fmt.Errorf("data directory and socket path are required")
	}

	logger, closeLog, err := newLogger(opts.DataDir)
	if err != nil {
		return err
	}
	defer closeLog()

	store := storage.New(opts.DataDir)
	service := task.NewService(store)

	stopCh := make(chan struct{})
	var stopOnce sync.Once
	stop := func() {
		// Slight delay so the daemon.stop response reaches the client
		// before the listener goes away.
		go func() {
			time.Sleep(100 * time.Millisecond)
			stopOnce.Do(func() { close(stopCh) })
		}()
	}

	handler := NewHandler(service, stop)
	server := ipc.NewServer(handler.Handle, logger)
	if err := server.Listen(opts.SocketPath); err != nil {
		logger.Error("failed to bind socket", "path", opts.SocketPath, "err", err)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("daemon started", "socket", opts.SocketPath, "pid", os.Getpid())

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
	case <-stopCh:
		logger.Info("stop requested, shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "err", err)
			server.Close()
			return err
		}
	}

	return server.Close()
}

func newLogger(dataDir string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, "daemon.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "yarud",
	})
	return logger, func() { f.Close() }, nil
}
