package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("STORY_URLS", "https://instagram.com/stories/alice/123456789/,https://instagram.com/stories/bob/42/")
	t.Setenv("COOKIES", "sessionid=abc; csrftoken=xyz")
	t.Setenv("PROXY_URL", "http://proxy:8080")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Len(t, c.Input.StoryURLs, 2)
	assert.Equal(t, "rod", c.Browser.Driver)
	assert.Equal(t, 600, c.Story.ViewportWidth)
	assert.Equal(t, 1000, c.Story.ViewportHeight)
	assert.Equal(t, 5*time.Second, c.Story.RevealTimeout)
	assert.Equal(t, 3*time.Second, c.Story.RevealSettle)
	assert.Equal(t, 2*time.Second, c.Story.CaptureSettle)
	assert.Equal(t, ".instagram.com", c.Story.CookieDomain)
	assert.Equal(t, uint64(3), c.Crawler.MaxRetries)
	assert.Equal(t, time.Duration(0), c.Crawler.ScheduleInterval)
}

func TestLoadMissingInput(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"no cookies", "COOKIES"},
		{"no proxy", "PROXY_URL"},
		{"no urls", "STORY_URLS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
		})
	}
}

func TestLoadInputDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "INPUT.json")
	doc := `{
		"storyUrls": [{"url": "https://instagram.com/stories/alice/123456789/"}, {"url": ""}],
		"cookies": "sessionid=abc; csrftoken=xyz",
		"proxyUrl": "http://proxy:8080"
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("STORY_URLS", "")
	t.Setenv("COOKIES", "")
	t.Setenv("PROXY_URL", "http://override:3128")
	t.Setenv("INPUT_PATH", path)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://instagram.com/stories/alice/123456789/"}, c.Input.StoryURLs)
	assert.Equal(t, "sessionid=abc; csrftoken=xyz", c.Input.Cookies)
	assert.Equal(t, "http://override:3128", c.Input.ProxyURL)
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BLOB", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	t.Setenv("S3_BUCKET", "stories")
	_, err = Load()
	require.NoError(t, err)

	t.Setenv("BROWSER_DRIVER", "lynx")
	_, err = Load()
	assert.True(t, errors.IsConfiguration(err))
}

func TestGetDSN(t *testing.T) {
	c := &Config{}
	c.Postgres.User = "u"
	c.Postgres.Pass = "p"
	c.Postgres.Host = "db"
	c.Postgres.Port = 5432
	c.Postgres.Name = "stories"
	c.Postgres.SslMode = "disable"

	assert.Equal(t, "postgres://u:p@db:5432/stories?sslmode=disable", c.GetDSN())
}

func resetSingleton(t *testing.T) {
	t.Helper()
	reset := func() {
		once = sync.Once{}
		cfg, cfgErr = nil, nil
	}
	reset()
	t.Cleanup(reset)
}

func TestNewKeepsFailureAcrossCalls(t *testing.T) {
	resetSingleton(t)
	t.Setenv("INPUT_PATH", "")
	t.Setenv("STORY_URLS", "")
	t.Setenv("COOKIES", "")
	t.Setenv("PROXY_URL", "")

	first, err := New()
	assert.Nil(t, first)
	assert.True(t, errors.IsConfiguration(err))

	second, err := New()
	assert.Nil(t, second)
	assert.True(t, errors.IsConfiguration(err))
}

func TestNewReturnsSameConfig(t *testing.T) {
	resetSingleton(t)
	t.Setenv("INPUT_PATH", "")
	setRequired(t)

	first, err := New()
	require.NoError(t, err)
	second, err := New()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
