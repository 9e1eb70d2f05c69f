package crawler

import (
	"testing"

	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestsDeduplicates(t *testing.T) {
	requests, invalid := BuildRequests([]string{
		"https://instagram.com/stories/alice/123456789/",
		"https://Instagram.com/stories/alice/123456789",
		"https://instagram.com/stories/alice/123456789/#frame",
		"https://instagram.com/stories/bob/42/",
	})

	assert.Empty(t, invalid)
	require.Len(t, requests, 2)
	assert.Equal(t, "https://instagram.com/stories/alice/123456789/", requests[0].URL)
	assert.Equal(t, "42", requests[1].StoryID())
}

func TestBuildRequestsReportsInvalid(t *testing.T) {
	requests, invalid := BuildRequests([]string{
		"instagram.com/stories/alice/1",
		"https://instagram.com/stories/carol/7/",
	})

	require.Len(t, requests, 1)
	require.Len(t, invalid, 1)
	assert.Equal(t, "instagram.com/stories/alice/1", invalid[0].URL)
	assert.Equal(t, errors.CodeConfiguration, invalid[0].Code)
	assert.Error(t, invalid[0].Err)
}
