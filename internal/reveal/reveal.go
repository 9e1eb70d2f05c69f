package reveal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
	"github.com/orgball2608/insta-story-capture/internal/settle"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

type State string

const (
	StateNavigated State = "navigated"
	StateRevealed  State = "revealed"
	StateFailed    State = "failed"
)

type Config struct {
	NavigationTimeout time.Duration
	ViewportWidth     int
	ViewportHeight    int
	// RevealTimeout bounds the wait for the first reveal candidate.
	RevealTimeout time.Duration
	Settle        settle.Config
}

// Driver walks a fresh page from navigation to a revealed story.
type Driver struct {
	table  *selectors.Table
	cfg    Config
	logger logger.Logger
}

func New(table *selectors.Table, cfg Config, log logger.Logger) *Driver {
	return &Driver{
		table:  table,
		cfg:    cfg,
		logger: log.WithComponent("reveal"),
	}
}

// Reveal opens the story and clicks through the "View story" gate. It
// returns StateRevealed, or StateFailed with the reason.
func (d *Driver) Reveal(ctx context.Context, page browser.Page, req domain.StoryRequest) (State, error) {
	log := d.logger.With("story_id", req.StoryID())

	if err := page.Navigate(ctx, req.URL, d.cfg.NavigationTimeout); err != nil {
		return StateFailed, errors.Navigation(err)
	}
	state := StateNavigated
	log.Debug("Story page loaded", "state", state, "url", page.URL())

	if err := page.SetViewport(ctx, d.cfg.ViewportWidth, d.cfg.ViewportHeight); err != nil {
		return StateFailed, fmt.Errorf("failed to set viewport: %w", err)
	}

	candidates := d.table.Reveal.Candidates
	if err := page.WaitForSelector(ctx, candidates, d.cfg.RevealTimeout); err != nil {
		return StateFailed, errors.RevealTimeout(err)
	}

	clicked, n, err := d.clickReveal(ctx, page)
	if err != nil {
		return StateFailed, err
	}
	if !clicked {
		return StateFailed, errors.RevealNotFound(d.table.Reveal.Text, n)
	}

	res := settle.Wait(ctx, page, d.cfg.Settle)
	if res.WaitErr != nil {
		log.Debug("Settle wait failed, waited out the budget", "error", res.WaitErr)
	}
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}

	log.Debug("Story revealed", "settle", res.Elapsed.Round(time.Millisecond).String(), "early", res.Early)
	return StateRevealed, nil
}

// clickReveal clicks the first candidate whose visible text contains the
// reveal text. It reports whether one was clicked and how many were seen.
func (d *Driver) clickReveal(ctx context.Context, page browser.Page) (bool, int, error) {
	els, err := page.Elements(ctx, d.table.Reveal.Candidates)
	if err != nil {
		return false, 0, fmt.Errorf("failed to list reveal candidates: %w", err)
	}

	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			continue
		}
		if !strings.Contains(text, d.table.Reveal.Text) {
			continue
		}
		if err := el.Click(ctx); err != nil {
			return false, len(els), fmt.Errorf("failed to click reveal control: %w", err)
		}
		return true, len(els), nil
	}
	return false, len(els), nil
}
