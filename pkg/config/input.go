package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Input mirrors the actor input document.
type Input struct {
	StoryURLs []struct {
		URL string `json:"url"`
	} `json:"storyUrls"`
	Cookies  string `json:"cookies"`
	ProxyURL string `json:"proxyUrl"`
}

func ReadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode input %s: %w", path, err)
	}
	return &in, nil
}

func (in *Input) URLs() []string {
	urls := make([]string, 0, len(in.StoryURLs))
	for _, s := range in.StoryURLs {
		if s.URL != "" {
			urls = append(urls, s.URL)
		}
	}
	return urls
}
