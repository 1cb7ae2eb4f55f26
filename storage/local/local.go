// Package local stores split dump files in a directory on the local
// filesystem.
package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const pendingSuffix = ".partial"

// Storage writes files into a single directory. A file is written under a
// hidden pending name and only appears under its own name once published,
// so a failed split never leaves a half-written file that looks complete.
type Storage struct {
	dir string
}

func NewLocalStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

// Dir returns the directory files are published to.
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) pendingPath(name string) string {
	return filepath.Join(s.dir, "."+filepath.Base(name)+pendingSuffix)
}

func (s *Storage) publishedPath(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Create opens the pending file for name, truncating any earlier attempt.
func (s *Storage) Create(_ context.Context, name string) (io.WriteCloser, error) {
	file, err := os.OpenFile(s.pendingPath(name), os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "local: create %s", name)
	}
	return file, nil
}

// Publish moves the pending file for name to its final name, replacing an
// existing file.
func (s *Storage) Publish(_ context.Context, name string) error {
	if err := os.Rename(s.pendingPath(name), s.publishedPath(name)); err != nil {
		return errors.Wrapf(err, "local: publish %s", name)
	}
	return nil
}

// Discard removes the pending file for name if there is one.
func (s *Storage) Discard(_ context.Context, name string) error {
	err := os.Remove(s.pendingPath(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "local: discard %s", name)
	}
	return nil
}

// List returns the names of the published files in lexical order.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "local: list")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}
