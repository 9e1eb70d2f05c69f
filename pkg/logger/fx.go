package logger

import (
	"context"
	"time"

	"github.com/orgball2608/insta-story-capture/pkg/config"
	"go.uber.org/fx"
)

var FxOption = fx.Annotate(
	func(lc fx.Lifecycle, cfg *config.Config) *Impl {
		log := New(
			Opts{
				Env:       cfg.App.Env,
				Level:     cfg.App.LogLevel,
				SentryDSN: cfg.App.SentryUrl,
			},
		)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				log.Flush(2 * time.Second)
				return nil
			},
		})
		return log
	},
	fx.As(new(Logger)),
)
