package record

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id string) domain.StoryRecord {
	rec := domain.NewStoryRecord()
	rec.Username = domain.StringPtr("alice")
	rec.StoryID = id
	rec.ScreenshotFileName = domain.ScreenshotFileName(id)
	return rec
}

func TestDatasetPushNumbersRecords(t *testing.T) {
	root := t.TempDir()
	d, err := NewDataset(root, "", logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, d.Push(context.Background(), sampleRecord("1")))
	require.NoError(t, d.Push(context.Background(), sampleRecord("2")))

	data, err := os.ReadFile(filepath.Join(root, "datasets", "default", "000000002.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2", got["storyId"])
	assert.Equal(t, "screenshot-2.png", got["screenshotFileName"])
	assert.Equal(t, []any{}, got["mediaData"])
	assert.Nil(t, got["songData"])
}

func TestDatasetContinuesExistingNumbering(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "datasets", "default")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000000007.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	d, err := NewDataset(root, "", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, d.Push(context.Background(), sampleRecord("8")))

	_, err = os.Stat(filepath.Join(dir, "000000008.json"))
	assert.NoError(t, err)
}

func TestDatasetConcurrentPush(t *testing.T) {
	d, err := NewDataset(t.TempDir(), "", logger.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Push(context.Background(), sampleRecord("x")))
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(d.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestInsertQuery(t *testing.T) {
	runID := uuid.New()
	rec := sampleRecord("123456789")
	rec.MediaData = append(rec.MediaData, domain.MediaItem{Type: domain.MediaVideo, MediaURL: domain.StringPtr("https://scontent.cdninstagram.com/v.mp4")})

	query, args, err := insertQuery(runID, rec, time.Unix(0, 0))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO story_records"))
	assert.Contains(t, query, "$10")
	require.Len(t, args, 10)
	assert.Equal(t, runID, args[0])
	assert.Equal(t, "123456789", args[1])
	assert.Equal(t, `[{"type":"video","mediaUrl":"https://scontent.cdninstagram.com/v.mp4"}]`, args[7])
	assert.Equal(t, "screenshot-123456789.png", args[8])
}

func TestInsertQueryNilMedia(t *testing.T) {
	rec := sampleRecord("1")
	rec.MediaData = nil

	_, args, err := insertQuery(uuid.New(), rec, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "[]", args[7])
}
