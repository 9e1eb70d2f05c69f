package telegram

import (
	"context"

	"github.com/orgball2608/insta-story-capture/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

// Client delivers captured stories to the configured channel.
type Client interface {
	Enabled() bool
	SendStory(ctx context.Context, rec domain.StoryRecord, screenshot []byte) error
	SendMessageToChannel(ctx context.Context, text string) error
}
