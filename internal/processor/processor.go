package processor

import (
	"context"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=processor.go -destination=mocks/mock.go

// Client captures one story on a page it does not own. A nil record comes
// with a non-nil error; nothing is persisted for a failed request.
type Client interface {
	Process(ctx context.Context, page browser.Page, req domain.StoryRequest) (*domain.StoryRecord, error)
}
