package screenshot

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
	"github.com/orgball2608/insta-story-capture/internal/settle"
	apperrors "github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

// Resolver captures the story region of a revealed page.
type Resolver struct {
	container string
	settle    settle.Config
	logger    logger.Logger
}

func New(table *selectors.Table, settleCfg settle.Config, log logger.Logger) *Resolver {
	return &Resolver{
		container: table.Screenshot.Container,
		settle:    settleCfg,
		logger:    log.WithComponent("screenshot"),
	}
}

// Resolve clips the capture to the story container when it has a box and
// falls back to the whole viewport otherwise. Only a failing capture is an
// error.
func (r *Resolver) Resolve(ctx context.Context, page browser.Page, req domain.StoryRequest) (*domain.ScreenshotArtifact, error) {
	log := r.logger.With("story_id", req.StoryID())

	settle.Wait(ctx, page, r.settle)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clip, err := r.region(ctx, page)
	if err != nil {
		log.Info("Story region unavailable, capturing full viewport", "reason", err)
	}

	data, err := page.Screenshot(ctx, clip)
	if err != nil {
		return nil, apperrors.Capture(err)
	}

	return &domain.ScreenshotArtifact{
		FileName:    req.ScreenshotFileName(),
		ContentType: domain.ScreenshotContentType,
		Data:        data,
		Clipped:     clip != nil,
	}, nil
}

var errEmptyBox = errors.New("container has no box")

func (r *Resolver) region(ctx context.Context, page browser.Page) (*browser.Rect, error) {
	el, err := page.Element(ctx, r.container)
	if err != nil {
		return nil, err
	}
	box, err := el.BoundingBox(ctx)
	if err != nil {
		return nil, err
	}
	if box.Empty() {
		return nil, errEmptyBox
	}
	return box, nil
}
