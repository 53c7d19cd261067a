package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type localDisk struct {
	root    string
	baseURL string
}

// NewLocalDisk stores files under root (relative roots resolve against the
// working directory) and builds public URLs from baseURL.
func NewLocalDisk(root, baseURL string) Disk {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &localDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written to.
func (d *localDisk) Root() string { return d.root }

// abs maps path into root. Cleaning against "/" first keeps "../" segments
// from escaping the root.
func (d *localDisk) abs(path string) string {
	return filepath.Join(d.root, filepath.Clean("/"+filepath.FromSlash(path)))
}

// Put writes to a temp file next to path and renames it into place.
func (d *localDisk) Put(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage/local: put %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage/local: put %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("storage/local: put %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(d.abs(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("storage/local: stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func (d *localDisk) Delete(_ context.Context, path string) error {
	if err := os.Remove(d.abs(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}
