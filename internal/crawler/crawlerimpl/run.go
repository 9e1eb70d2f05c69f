package crawlerimpl

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/crawler"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/metrics"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/formatter"
	"github.com/orgball2608/insta-story-capture/pkg/retry"
	"github.com/panjf2000/ants/v2"
)

// Run processes every configured story once. Failed requests are retried
// up to the configured budget and reported individually; they never fail
// the run.
func (c *CrawlerImpl) Run(ctx context.Context) (crawler.Summary, error) {
	started := time.Now()
	c.Metrics.RunsTotal.Inc()

	requests, invalid := crawler.BuildRequests(c.urls)
	summary := crawler.Summary{Total: len(requests) + len(invalid)}
	for _, f := range invalid {
		c.Logger.Warn("Skipping invalid story url", "url", f.URL, "error", f.Err)
		c.Metrics.ObserveFailure(f.Code)
		summary.Failed++
		summary.Failures = append(summary.Failures, f)
	}

	pool, err := ants.NewPool(c.concurrency, ants.WithPreAlloc(true))
	if err != nil {
		return summary, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	c.Logger.Info("Starting crawl", "requests", len(requests), "concurrency", c.concurrency)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(req domain.StoryRequest, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			summary.Succeeded++
			return
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, crawler.Failure{URL: req.URL, Code: errors.GetCode(err), Err: err})
	}

	for _, req := range requests {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				record(req, ctx.Err())
				return
			default:
			}
			record(req, c.handle(ctx, req))
		})
		if err != nil {
			wg.Done()
			c.Logger.Error("Failed to submit story request", "url", req.URL, "error", err)
			record(req, err)
		}
	}

	wg.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].URL < summary.Failures[j].URL
	})
	summary.Duration = time.Since(started)

	c.Logger.Info("Crawl finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration.Round(time.Millisecond).String())
	c.notifySummary(ctx, summary)

	return summary, ctx.Err()
}

// handle runs one request with retries, each attempt on a fresh page.
func (c *CrawlerImpl) handle(ctx context.Context, req domain.StoryRequest) error {
	started := time.Now()
	host := hostOf(req.URL)
	log := c.Logger.With("story_id", req.StoryID(), "url", req.URL)

	attempts, err := retry.Do(ctx, log, "process story", func(attempt int) error {
		if err := c.Limiter.Wait(ctx, host); err != nil {
			return err
		}
		return c.attempt(ctx, req, attempt)
	}, c.retry)

	if err != nil {
		code := errors.GetCode(err)
		log.Error("Story request failed", "attempts", attempts, "code", code, "error", err)
		c.Metrics.ObserveRequest(metrics.OutcomeFailed, started, attempts)
		c.Metrics.ObserveFailure(code)
		return err
	}

	c.Metrics.ObserveRequest(metrics.OutcomeSucceeded, started, attempts)
	return nil
}

func (c *CrawlerImpl) attempt(ctx context.Context, req domain.StoryRequest, attempt int) error {
	page, err := c.Driver.NewPage(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to open page")
	}
	defer func() {
		if err := page.Close(); err != nil {
			c.Logger.Warn("Failed to close page", "url", req.URL, "error", err)
		}
	}()

	c.Logger.Debug("Processing story", "url", req.URL, "attempt", attempt, "driver", c.Driver.Name())
	_, err = c.Processor.Process(ctx, page, req)
	return err
}

func (c *CrawlerImpl) notifySummary(ctx context.Context, summary crawler.Summary) {
	if summary.Failed == 0 || c.Telegram == nil || !c.Telegram.Enabled() {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Story capture finished: %s of %s captured, %s failed\n",
		formatter.FormatNumber(summary.Succeeded),
		formatter.FormatNumber(summary.Total),
		formatter.FormatNumber(summary.Failed))
	for _, f := range summary.Failures {
		fmt.Fprintf(&b, "%s (%s): %s\n", f.URL, codeOrUnknown(f.Code), errors.GetMessage(f.Err))
	}

	if err := c.Telegram.SendMessageToChannel(ctx, b.String()); err != nil {
		c.Metrics.NotifyErrors.Inc()
		c.Logger.Error("Failed to send crawl summary", "error", err)
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return strings.ToLower(u.Host)
}

func codeOrUnknown(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
