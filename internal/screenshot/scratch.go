package screenshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Scratch is the local file a capture passes through on its way to the
// blob store. Close removes it and is safe to call more than once.
type Scratch struct {
	path string
}

// NewScratch places fileName under dir, or the OS temp dir when dir is empty.
func NewScratch(dir, fileName string) *Scratch {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Scratch{path: filepath.Join(dir, filepath.Base(fileName))}
}

func (s *Scratch) Path() string {
	return s.path
}

func (s *Scratch) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write scratch file: %w", err)
	}
	return nil
}

func (s *Scratch) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch file: %w", err)
	}
	return data, nil
}

func (s *Scratch) Close() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove scratch file: %w", err)
	}
	return nil
}
