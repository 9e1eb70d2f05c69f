package crawler

import (
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
)

// BuildRequests turns raw URLs into story requests, keeping the first
// occurrence of each unique key. Unparseable URLs come back as failures.
func BuildRequests(urls []string) ([]domain.StoryRequest, []Failure) {
	seen := make(map[string]struct{}, len(urls))
	requests := make([]domain.StoryRequest, 0, len(urls))
	var invalid []Failure

	for _, raw := range urls {
		req, err := domain.NewStoryRequest(raw)
		if err != nil {
			invalid = append(invalid, Failure{URL: raw, Code: errors.CodeConfiguration, Err: err})
			continue
		}
		if _, ok := seen[req.UniqueKey]; ok {
			continue
		}
		seen[req.UniqueKey] = struct{}{}
		requests = append(requests, req)
	}

	return requests, invalid
}
