package processorimpl

import (
	"github.com/orgball2608/insta-story-capture/internal/blobstore"
	"github.com/orgball2608/insta-story-capture/internal/cookie"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/extractor"
	"github.com/orgball2608/insta-story-capture/internal/metrics"
	"github.com/orgball2608/insta-story-capture/internal/processor"
	"github.com/orgball2608/insta-story-capture/internal/repositories/record"
	"github.com/orgball2608/insta-story-capture/internal/reveal"
	"github.com/orgball2608/insta-story-capture/internal/screenshot"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
	"github.com/orgball2608/insta-story-capture/internal/settle"
	"github.com/orgball2608/insta-story-capture/internal/telegram"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	Selectors  *selectors.Table
	BlobStore  blobstore.Store
	RecordRepo record.Repository
	Telegram   telegram.Client `optional:"true"`
	Metrics    *metrics.Metrics
}

type ProcessorImpl struct {
	cookies     []domain.Cookie
	scratchDir  string
	reveal      *reveal.Driver
	extractor   *extractor.Extractor
	screenshots *screenshot.Resolver

	BlobStore  blobstore.Store
	RecordRepo record.Repository
	Telegram   telegram.Client
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

func New(opts Opts) (*ProcessorImpl, error) {
	cfg := opts.Config
	log := opts.Logger.WithComponent("processor")

	cookies, err := cookie.Parse(cfg.Input.Cookies, cfg.Story.CookieDomain)
	if err != nil {
		return nil, err
	}

	ext, err := extractor.New(opts.Selectors)
	if err != nil {
		return nil, err
	}

	mode := settle.Mode(cfg.Story.SettleMode)
	driver := reveal.New(opts.Selectors, reveal.Config{
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		ViewportWidth:     cfg.Story.ViewportWidth,
		ViewportHeight:    cfg.Story.ViewportHeight,
		RevealTimeout:     cfg.Story.RevealTimeout,
		Settle:            settle.DefaultConfig(mode).WithBudget(cfg.Story.RevealSettle),
	}, opts.Logger)
	resolver := screenshot.New(opts.Selectors, settle.DefaultConfig(mode).WithBudget(cfg.Story.CaptureSettle), opts.Logger)

	log.Info("Story processor ready",
		"selectors", opts.Selectors.Version,
		"cookies", len(cookies),
		"settle_mode", string(mode))

	return &ProcessorImpl{
		cookies:     cookies,
		scratchDir:  cfg.Story.ScratchDir,
		reveal:      driver,
		extractor:   ext,
		screenshots: resolver,
		BlobStore:   opts.BlobStore,
		RecordRepo:  opts.RecordRepo,
		Telegram:    opts.Telegram,
		Metrics:     opts.Metrics,
		Logger:      log,
	}, nil
}

var _ processor.Client = (*ProcessorImpl)(nil)
