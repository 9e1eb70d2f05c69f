package crawlerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Schedule runs the crawl every interval, skipping a tick while the
// previous pass is still running. The scheduler stops when ctx is done.
func (c *CrawlerImpl) Schedule(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid schedule interval %s", interval)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(
			func() {
				if ctx.Err() != nil {
					c.Logger.Info("Context cancelled, skipping scheduled crawl")
					return
				}
				if _, err := c.Run(ctx); err != nil {
					c.Logger.Error("Scheduled crawl failed", "error", err)
				}
			},
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule crawl: %w", err)
	}

	scheduler.Start()
	c.Logger.Info("Crawl scheduled", "interval", interval.String())

	go func() {
		<-ctx.Done()
		c.Logger.Info("Stopping crawl scheduler")
		if err := scheduler.Shutdown(); err != nil {
			c.Logger.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}
