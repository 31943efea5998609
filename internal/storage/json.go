package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdxmph/tasks/internal/tasks"
)

// JSONBackend keeps the task list as a JSON array in a single file
type JSONBackend struct {
	path string
}

// NewJSONBackend creates a backend for the file at path. The file does not need to exist.
func NewJSONBackend(path string) (*JSONBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("json backend: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &JSONBackend{path: abs}, nil
}

// Name returns the backend identifier
func (b *JSONBackend) Name() string {
	return "json"
}

// Path returns the absolute path of the task file
func (b *JSONBackend) Path() string {
	return b.path
}

// Exists reports whether the task file has been created
func (b *JSONBackend) Exists() bool {
	_, err := os.Stat(b.path)
	return err == nil
}

// Load reads every task from the file. A missing file is an empty list.
func (b *JSONBackend) Load() ([]tasks.Task, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []tasks.Task{}, nil
	}
	if err != nil {
		return nil, &tasks.StorageError{Op: "load", Path: b.path, Err: err}
	}

	loaded := []tasks.Task{}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, &tasks.StorageError{Op: "load", Path: b.path, Err: fmt.Errorf("parsing task JSON: %w", err)}
	}
	return loaded, nil
}

// Save replaces the file contents with list. The data is written to a
// temporary file in the same directory and renamed over the original.
func (b *JSONBackend) Save(list []tasks.Task) error {
	if list == nil {
		list = []tasks.Task{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &tasks.StorageError{Op: "save", Path: b.path, Err: fmt.Errorf("encoding tasks: %w", err)}
	}
	if err := writeFileAtomic(b.path, data); err != nil {
		return &tasks.StorageError{Op: "save", Path: b.path, Err: err}
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save
func (b *JSONBackend) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func init() {
	Register("json", func(path string) (Backend, error) { return NewJSONBackend(path) })
}
