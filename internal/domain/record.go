package domain

import "encoding/json"

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// StoryRecord is the structured output of one captured story. Optional
// fields marshal as null rather than being omitted.
type StoryRecord struct {
	Username           *string     `json:"username"`
	ProfilePicture     *string     `json:"profilePicture"`
	IsVerified         bool        `json:"isVerified"`
	Timestamp          *string     `json:"timestamp"`
	SongData           *string     `json:"songData"`
	MediaData          []MediaItem `json:"mediaData"`
	ScreenshotFileName string      `json:"screenshotFileName"`
	StoryID            string      `json:"storyId"`
}

// NewStoryRecord returns a record with every field at its default.
func NewStoryRecord() StoryRecord {
	return StoryRecord{MediaData: []MediaItem{}}
}

type MediaItem struct {
	Type     MediaType
	MediaURL *string
	AltText  *string
}

// MarshalJSON keeps altText on images (possibly null) and drops it on videos.
func (m MediaItem) MarshalJSON() ([]byte, error) {
	if m.Type == MediaVideo {
		return json.Marshal(struct {
			Type     MediaType `json:"type"`
			MediaURL *string   `json:"mediaUrl"`
		}{m.Type, m.MediaURL})
	}
	return json.Marshal(struct {
		Type     MediaType `json:"type"`
		MediaURL *string   `json:"mediaUrl"`
		AltText  *string   `json:"altText"`
	}{m.Type, m.MediaURL, m.AltText})
}

func (m *MediaItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     MediaType `json:"type"`
		MediaURL *string   `json:"mediaUrl"`
		AltText  *string   `json:"altText"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Type, m.MediaURL, m.AltText = raw.Type, raw.MediaURL, raw.AltText
	return nil
}

// ScreenshotArtifact is the captured PNG and the key it is stored under.
type ScreenshotArtifact struct {
	FileName    string
	ContentType string
	Data        []byte
	Clipped     bool
}

// Cookie is one session cookie scoped to the target site.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
