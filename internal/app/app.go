package app

import (
	"context"

	blobstorefx "github.com/orgball2608/insta-story-capture/internal/blobstore/fx"
	browserfx "github.com/orgball2608/insta-story-capture/internal/browser/fx"
	"github.com/orgball2608/insta-story-capture/internal/crawler"
	"github.com/orgball2608/insta-story-capture/internal/crawler/crawlerimpl"
	"github.com/orgball2608/insta-story-capture/internal/metrics"
	"github.com/orgball2608/insta-story-capture/internal/migrations"
	"github.com/orgball2608/insta-story-capture/internal/processor"
	"github.com/orgball2608/insta-story-capture/internal/processor/processorimpl"
	"github.com/orgball2608/insta-story-capture/internal/repositories/record"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
	"github.com/orgball2608/insta-story-capture/internal/telegram"
	"github.com/orgball2608/insta-story-capture/internal/telegram/telegramimpl"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/orgball2608/insta-story-capture/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		metrics.NewWithRuntime,
		newSelectors,
		crawlerimpl.NewLimiter,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		), fx.Annotate(
			processorimpl.New,
			fx.As(new(processor.Client)),
		), fx.Annotate(
			crawlerimpl.New,
			fx.As(new(crawler.Client)),
		),
	),
	browserfx.Module,
	blobstorefx.Module,
	record.Module,
	fx.Invoke(migrate),
	fx.Invoke(startHttpServer),
	fx.Invoke(run),
)

func newSelectors(cfg *config.Config, log logger.Logger) (*selectors.Table, error) {
	table, err := selectors.Load(cfg.Story.SelectorsPath)
	if err != nil {
		return nil, err
	}
	log.Info("Selector table loaded", "version", table.Version, "path", cfg.Story.SelectorsPath)
	return table, nil
}

// migrate brings the story_records schema up to date before the first
// request when records go to postgres.
func migrate(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) {
	if cfg.Storage.Sink != "postgres" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			db, err := migrations.Open(cfg.GetDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Up(ctx, db); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	})
}

type runOpts struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     logger.Logger
	Crawler    crawler.Client
}

// run starts a single crawl pass that shuts the app down when it finishes,
// or a schedule that runs until the app stops.
func run(opts runOpts) {
	log := opts.Logger
	interval := opts.Config.Crawler.ScheduleInterval
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	opts.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if interval > 0 {
				close(done)
				return opts.Crawler.Schedule(ctx, interval)
			}

			go func() {
				defer close(done)

				exitCode := 0
				summary, err := opts.Crawler.Run(ctx)
				if err != nil {
					log.Error("Crawl aborted", "error", err)
					exitCode = 1
				}
				for _, f := range summary.Failures {
					log.Warn("Story not captured", "url", f.URL, "code", f.Code, "error", f.Err)
				}

				if err := opts.Shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					log.Error("Failed to request shutdown", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				log.Warn("Crawl did not stop before the shutdown deadline")
			}
			return nil
		},
	})
}
