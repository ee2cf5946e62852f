// Package storage is the store codec: it serializes the task collection to
// a single JSON document and persists it with an atomic replace-on-write, so
// a concurrent reader never observes a half-written file. It knows nothing
// about business rules.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Cer0un0/yaru/internal/task"
)

const (
	dataFileName   = "data.json"
	tempFileName   = "data.json.tmp"
	backupFileName = "data.json.bak"
)

// Service reads and writes the task store under one data directory.
type Service struct {
	dataDir string
}

// New returns a codec rooted at dataDir. The directory is created lazily on
// first save.
func New(dataDir string) *Service {
	return &Service{dataDir: dataDir}
}

// DataDir returns the directory holding the data, temp and backup files.
func (s *Service) DataDir() string {
	return s.dataDir
}

func (s *Service) dataPath() string   { return filepath.Join(s.dataDir, dataFileName) }
func (s *Service) tempPath() string   { return filepath.Join(s.dataDir, tempFileName) }
func (s *Service) backupPath() string { return filepath.Join(s.dataDir, backupFileName) }

// Load reads the current store. A missing data file is not an error: an
// empty store is synthesized, persisted so the empty state is durable, and
// returned. A present but unparseable file is CORRUPTED_DATA, never an
// empty store.
func (s *Service) Load() (*task.Store, error) {
	data, err := os.ReadFile(s.dataPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			store := task.NewStore()
			if err := s.Save(store); err != nil {
				return nil, err
			}
			return store, nil
		}
		return nil, errCorrupted(err)
	}
	return parseStore(data)
}

// Save recomputes the store metadata from the tasks given, then atomically
// replaces the data file: full serialized content to a temp file in the same
// directory, then rename over the real file.
func (s *Service) Save(store *task.Store) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errWrite(err)
	}

	store.Metadata = task.StoreMetadata{
		LastModified: time.Now().UTC(),
		TaskCount:    len(store.Tasks),
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return errWrite(err)
	}
	data = append(data, '\n')

	tmp := s.tempPath()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errWrite(err)
	}
	if err := os.Rename(tmp, s.dataPath()); err != nil {
		os.Remove(tmp)
		return errWrite(err)
	}
	return nil
}

// Backup copies the current data file to the backup path.
func (s *Service) Backup() error {
	if _, err := os.Stat(s.dataPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Code: CodeFileNotFound, Message: "no data file to back up"}
		}
		return errWrite(err)
	}
	if err := copyFile(s.dataPath(), s.backupPath()); err != nil {
		return errWrite(err)
	}
	return nil
}

// Restore copies the backup file over the data file and re-parses it as the
// new current store.
func (s *Service) Restore() (*task.Store, error) {
	if _, err := os.Stat(s.backupPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Code: CodeBackupNotFound, Message: "no backup file found"}
		}
		return nil, errWrite(err)
	}
	if err := copyFile(s.backupPath(), s.dataPath()); err != nil {
		return nil, errWrite(err)
	}

	data, err := os.ReadFile(s.dataPath())
	if err != nil {
		return nil, errCorrupted(err)
	}
	return parseStore(data)
}

func parseStore(data []byte) (*task.Store, error) {
	var store task.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, errCorrupted(err)
	}
	if store.Tasks == nil {
		store.Tasks = []task.Task{}
	}
	return &store, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", dst, err)
	}
	return nil
}
