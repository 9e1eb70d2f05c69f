package processorimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/extractor"
	"github.com/orgball2608/insta-story-capture/internal/reveal"
	"github.com/orgball2608/insta-story-capture/internal/screenshot"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

// Process drives one story from a fresh page to a persisted record. The
// record is only pushed once its screenshot is stored under the same key.
func (p *ProcessorImpl) Process(ctx context.Context, page browser.Page, req domain.StoryRequest) (*domain.StoryRecord, error) {
	log := p.Logger.With("story_id", req.StoryID(), "url", req.URL)

	if err := page.SetCookies(ctx, p.cookies); err != nil {
		return nil, fmt.Errorf("failed to set cookies: %w", err)
	}

	state, err := p.reveal.Reveal(ctx, page, req)
	if state != reveal.StateRevealed {
		log.Warn("Story reveal failed", "state", state, "error", err)
		return nil, err
	}

	rec := p.extract(ctx, page, log)
	rec.StoryID = req.StoryID()

	artifact, err := p.screenshots.Resolve(ctx, page, req)
	if err != nil {
		return nil, err
	}
	if !artifact.Clipped {
		p.Metrics.ScreenshotFallbacks.Inc()
	}
	rec.ScreenshotFileName = artifact.FileName

	data, err := p.storeScreenshot(ctx, artifact, log)
	if err != nil {
		return nil, err
	}

	if err := p.RecordRepo.Push(ctx, rec); err != nil {
		return nil, errors.Persist("record", err)
	}

	log.Info("Story captured",
		"screenshot", rec.ScreenshotFileName,
		"media", len(rec.MediaData),
		"clipped", artifact.Clipped)

	p.notify(ctx, rec, data, log)
	return &rec, nil
}

// extract never fails: a missing snapshot yields the default record.
// The snapshot is taken twice at most since a navigation in flight can
// destroy the execution context once.
func (p *ProcessorImpl) extract(ctx context.Context, page browser.Page, log logger.Logger) domain.StoryRecord {
	html, err := page.HTML(ctx)
	if err != nil && ctx.Err() == nil {
		log.Warn("Failed to snapshot page, retrying", "error", err)
		html, err = page.HTML(ctx)
	}
	if err != nil {
		log.Warn("Failed to snapshot page, using default fields", "error", err)
		p.countFallbacks(extractor.FieldUsername, extractor.FieldProfilePicture, extractor.FieldIsVerified,
			extractor.FieldTimestamp, extractor.FieldSongData, extractor.FieldMediaData)
		return domain.NewStoryRecord()
	}

	doc, err := extractor.NewDocument(html, page.URL())
	if err != nil {
		log.Warn("Failed to parse page snapshot, using default fields", "error", err)
		return domain.NewStoryRecord()
	}

	rec, failures := p.extractor.Extract(doc)
	for _, f := range failures {
		log.Warn("Field extraction failed", "field", f.Field, "error", f.Err)
		p.countFallbacks(f.Field)
	}
	return rec
}

func (p *ProcessorImpl) countFallbacks(fields ...string) {
	for _, f := range fields {
		p.Metrics.FieldFallbacks.WithLabelValues(f).Inc()
	}
}

// storeScreenshot routes the capture through its scratch file into the blob
// store. The scratch file is gone when it returns, whatever the outcome.
func (p *ProcessorImpl) storeScreenshot(ctx context.Context, artifact *domain.ScreenshotArtifact, log logger.Logger) ([]byte, error) {
	scratch := screenshot.NewScratch(p.scratchDir, artifact.FileName)
	defer func() {
		if err := scratch.Close(); err != nil {
			log.Warn("Failed to remove scratch screenshot", "path", scratch.Path(), "error", err)
		}
	}()

	if err := scratch.Write(artifact.Data); err != nil {
		return nil, errors.Persist("screenshot", err)
	}
	data, err := scratch.Read()
	if err != nil {
		return nil, errors.Persist("screenshot", err)
	}

	if err := p.BlobStore.Put(ctx, artifact.FileName, data, artifact.ContentType); err != nil {
		return nil, errors.Persist("screenshot", err)
	}
	return data, nil
}

func (p *ProcessorImpl) notify(ctx context.Context, rec domain.StoryRecord, shot []byte, log logger.Logger) {
	if p.Telegram == nil || !p.Telegram.Enabled() {
		return
	}
	if err := p.Telegram.SendStory(ctx, rec, shot); err != nil {
		p.Metrics.NotifyErrors.Inc()
		log.Error("Failed to notify story", "error", err)
	}
}
