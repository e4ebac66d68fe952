// Package filestore keeps generated assets as files in a local directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
)

// ErrInvalidName is returned for names that are empty or would escape the directory.
var ErrInvalidName = errors.New("invalid blob name")

// Store implements asset.Blobs on the local filesystem.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Ensure Store implements asset.Blobs
var _ asset.Blobs = (*Store)(nil)

// New creates dir if needed and returns a Store rooted at it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory cannot be empty", ErrInvalidName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %q: %w", dir, err)
	}

	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "file_blob_store")),
	}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists implements asset.Blobs.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", name, err)
	}
}

// Put implements asset.Blobs. Data is written to a temporary file and renamed
// into place so readers never see a partial file.
func (s *Store) Put(ctx context.Context, name string, data []byte, _ string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", name, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to move %q into place: %w", name, err)
	}

	log.Debug("asset written", slog.String("name", name), slog.Int("bytes", len(data)))
	return nil
}

// Delete implements asset.Blobs.
func (s *Store) Delete(ctx context.Context, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("asset already absent", slog.String("name", name))
			return nil
		}
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}

	log.Debug("asset deleted", slog.String("name", name))
	return nil
}
