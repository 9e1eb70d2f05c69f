package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	screenshotPrefix = "screenshot-"
	screenshotSuffix = ".png"

	ScreenshotContentType = "image/png"
)

// StoryRequest is one story page to capture.
type StoryRequest struct {
	URL       string
	UniqueKey string
}

func NewStoryRequest(rawURL string) (StoryRequest, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return StoryRequest{}, fmt.Errorf("invalid story url %q: %w", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return StoryRequest{}, fmt.Errorf("invalid story url %q: absolute http(s) url required", rawURL)
	}
	if lastSegment(u.Path) == "" {
		return StoryRequest{}, fmt.Errorf("invalid story url %q: no path segment", rawURL)
	}

	return StoryRequest{
		URL:       rawURL,
		UniqueKey: normalize(u),
	}, nil
}

func (r StoryRequest) StoryID() string {
	return StoryID(r.URL)
}

func (r StoryRequest) ScreenshotFileName() string {
	return ScreenshotFileName(r.StoryID())
}

// StoryID returns the last non-empty segment of a story URL's path. Query
// and fragment never take part in it.
func StoryID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return lastSegment(u.Path)
}

func lastSegment(p string) string {
	parts := strings.Split(p, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

func ScreenshotFileName(storyID string) string {
	return screenshotPrefix + storyID + screenshotSuffix
}

// StoryIDFromFileName inverts ScreenshotFileName.
func StoryIDFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, screenshotPrefix) || !strings.HasSuffix(name, screenshotSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, screenshotPrefix), screenshotSuffix)
	return id, id != ""
}

func normalize(u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	n.Fragment = ""
	n.RawFragment = ""
	n.Path = strings.TrimRight(n.Path, "/")
	n.RawPath = ""
	return n.String()
}
