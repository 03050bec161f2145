package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// FileDocument keeps a cache document in a single JSON file.
// Writes go to a sibling temp file first and are renamed into place, so a
// crash mid-write leaves the previous document intact.
type FileDocument struct {
	fs   afero.Fs
	path string
}

var _ repository.DocumentStore = (*FileDocument)(nil)

// NewFileDocument creates a document stored at path on fsys.
func NewFileDocument(fsys afero.Fs, path string) *FileDocument {
	return &FileDocument{
		fs:   fsys,
		path: path,
	}
}

// Path returns the document's file path.
func (d *FileDocument) Path() string {
	return d.path
}

// Load reads the document. Returns repository.ErrDocumentNotFound if the file does not exist.
func (d *FileDocument) Load(ctx context.Context) ([]byte, error) {
	data, err := afero.ReadFile(d.fs, d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repository.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	return data, nil
}

// Save replaces the document with data.
func (d *FileDocument) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.fs.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := d.path + ".tmp"
	if err := afero.WriteFile(d.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	if err := d.fs.Rename(tmp, d.path); err != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	return nil
}
