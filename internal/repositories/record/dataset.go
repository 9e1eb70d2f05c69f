package record

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

const DefaultDataset = "default"

// Dataset appends each record as a numbered JSON file under
// <root>/datasets/<name>/, continuing the numbering of an existing dataset.
type Dataset struct {
	dir    string
	logger logger.Logger

	mu   sync.Mutex
	next int
}

func NewDataset(root, name string, log logger.Logger) (*Dataset, error) {
	if name == "" {
		name = DefaultDataset
	}
	dir := filepath.Join(root, "datasets", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dataset dir: %w", err)
	}

	last, err := lastIndex(dir)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		dir:    dir,
		logger: log.WithComponent("DatasetRepo"),
		next:   last + 1,
	}, nil
}

func (d *Dataset) Dir() string {
	return d.dir
}

func (d *Dataset) Push(ctx context.Context, rec domain.StoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	name := fmt.Sprintf("%09d.json", d.next)
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	d.next++

	d.logger.Debug("Record pushed", "file", name, "story_id", rec.StoryID)
	return nil
}

func lastIndex(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read dataset dir: %w", err)
	}

	last := 0
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil && n > last {
			last = n
		}
	}
	return last, nil
}

var _ Repository = (*Dataset)(nil)
