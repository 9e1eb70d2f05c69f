package crawlerimpl

import (
	"time"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/crawler"
	"github.com/orgball2608/insta-story-capture/internal/metrics"
	"github.com/orgball2608/insta-story-capture/internal/processor"
	"github.com/orgball2608/insta-story-capture/internal/ratelimit"
	"github.com/orgball2608/insta-story-capture/internal/telegram"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/orgball2608/insta-story-capture/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config    *config.Config
	Logger    logger.Logger
	Driver    browser.Driver
	Processor processor.Client
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter
	Telegram  telegram.Client `optional:"true"`
}

type CrawlerImpl struct {
	urls        []string
	concurrency int
	retry       retry.Config

	Driver    browser.Driver
	Processor processor.Client
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter
	Telegram  telegram.Client
	Logger    logger.Logger
}

func New(opts Opts) *CrawlerImpl {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = opts.Config.Crawler.MaxRetries
	retryCfg.Permanent = errors.IsConfiguration

	return &CrawlerImpl{
		urls:        opts.Config.Input.StoryURLs,
		concurrency: opts.Config.Crawler.Concurrency,
		retry:       retryCfg,
		Driver:      opts.Driver,
		Processor:   opts.Processor,
		Metrics:     opts.Metrics,
		Limiter:     opts.Limiter,
		Telegram:    opts.Telegram,
		Logger:      opts.Logger.WithComponent("crawler"),
	}
}

// NewLimiter paces navigations per host from the crawler settings.
func NewLimiter(cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewInMemoryLimiter(cfg.Crawler.RequestsPerMinute, time.Minute, 1)
}

var _ crawler.Client = (*CrawlerImpl)(nil)
