package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bilgisen/zenstudio/internal/models"
)

// FS is the filesystem capability the stores depend on. The hosting runtime
// supplies the implementation; OS is the default one.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
	Exists(path string) (bool, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

// OS implements FS on top of the local filesystem.
type OS struct{}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile truncates and rewrites path. Writes are not atomic.
func (OS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (OS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (OS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// ReadJSON decodes the JSON file at path into v. A missing file yields
// fs.ErrNotExist, a decode failure is wrapped with models.ErrCorrupt.
func ReadJSON(fsys FS, path string, v any) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrCorrupt, path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON, creating the parent directory first.
func WriteJSON(fsys FS, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(fsys, path, data)
}

// WriteFile writes data to path, creating the parent directory first.
// Failures are wrapped with models.ErrIO.
func WriteFile(fsys FS, path string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %w", models.ErrIO, path, err)
	}
	if err := fsys.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", models.ErrIO, path, err)
	}
	return nil
}
