package fx

import (
	"context"
	"fmt"
	"io"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/browser/playwrightimpl"
	"github.com/orgball2608/insta-story-capture/internal/browser/rodimpl"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("browser",
	fx.Provide(NewDriver),
)

type Opts struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    logger.Logger
}

type closingDriver interface {
	browser.Driver
	io.Closer
}

// NewDriver launches the configured browser and closes it when the app stops.
func NewDriver(opts Opts) (browser.Driver, error) {
	var (
		d   closingDriver
		err error
	)
	switch opts.Config.Browser.Driver {
	case "rod":
		d, err = rodimpl.New(rodimpl.Opts{Config: opts.Config, Logger: opts.Logger})
	case "playwright":
		d, err = playwrightimpl.New(playwrightimpl.Opts{Config: opts.Config, Logger: opts.Logger})
	default:
		return nil, fmt.Errorf("unsupported browser driver %q", opts.Config.Browser.Driver)
	}
	if err != nil {
		return nil, err
	}

	opts.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			opts.Logger.Info("Shutting down browser...", "driver", d.Name())
			if err := d.Close(); err != nil {
				opts.Logger.Error("Failed to close browser", "error", err)
				return err
			}
			return nil
		},
	})
	return d, nil
}
