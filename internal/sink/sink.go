package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bilgisen/zenstudio/internal/storage"
)

// Sink delivers a rendered export and returns where it ended up.
type Sink interface {
	Deliver(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Local writes exports into a directory.
type Local struct {
	fs  storage.FS
	dir string
}

func NewLocal(fsys storage.FS, dir string) *Local {
	return &Local{fs: fsys, dir: dir}
}

func (l *Local) Deliver(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(l.dir, filepath.Base(name))
	if err := storage.WriteFile(l.fs, path, data); err != nil {
		return "", fmt.Errorf("failed to deliver export: %w", err)
	}
	return path, nil
}
