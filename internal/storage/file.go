package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each collection as <dir>/<collection>.json.
type FileBackend struct {
	dir     string
	syncDir func(dir string) error
}

// NewFileBackend prepares dir for use, creating it when missing.
func NewFileBackend(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file storage: create %s: %w", dir, err)
	}
	return &FileBackend{dir: dir, syncDir: syncDir}, nil
}

// Dir returns the directory holding the collection files.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Load reads the collection file.
func (b *FileBackend) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := b.path(collection)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("file storage: read %s: %w", collection, err)
	}
	return data, nil
}

// Save writes the document to a temp file in the same directory, syncs it,
// renames it over the collection file and then syncs the directory.
func (b *FileBackend) Save(ctx context.Context, collection string, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := b.path(collection)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, "."+collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("file storage: create temp for %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(document); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: write %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: sync %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: close %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("file storage: replace %s: %w", collection, err)
	}
	committed = true
	if err := b.syncDir(b.dir); err != nil {
		return fmt.Errorf("file storage: sync directory for %s: %w", collection, err)
	}
	return nil
}

// syncDir flushes the directory entry so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

func (b *FileBackend) path(collection string) (string, error) {
	if collection == "" || strings.ContainsAny(collection, `/\`) || strings.HasPrefix(collection, ".") {
		return "", fmt.Errorf("file storage: invalid collection name %q", collection)
	}
	return filepath.Join(b.dir, collection+".json"), nil
}

var _ Backend = (*FileBackend)(nil)
