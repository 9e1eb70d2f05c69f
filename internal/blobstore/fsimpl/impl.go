package fsimpl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/orgball2608/insta-story-capture/internal/blobstore"
)

// DefaultStore is the name of the key-value store captures land in.
const DefaultStore = "default"

// Store keeps artifacts as plain files under
// <root>/key_value_stores/<name>/<key>.
type Store struct {
	dir string
}

func New(root, name string) *Store {
	if name == "" {
		name = DefaultStore
	}
	return &Store{dir: filepath.Join(root, "key_value_stores", name)}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid blob key %q", key)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}

	// Write then rename so readers never observe a partial file.
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

var _ blobstore.Store = (*Store)(nil)
