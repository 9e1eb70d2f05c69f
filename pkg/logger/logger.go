package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithComponent(name string) Logger

	// Printf lets the logger back fx.Logger.
	Printf(format string, args ...any)

	Flush(timeout time.Duration)
}

type Opts struct {
	Env       string
	Level     string
	SentryDSN string
}

type Impl struct {
	log    *slog.Logger
	sentry bool
}

func New(opts Opts) *Impl {
	level := parseLevel(opts.Level)

	var zl zerolog.Logger
	if opts.Env == "production" {
		zl = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	withSentry := false
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err == nil {
			withSentry = true
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		} else {
			zl.Warn().Err(err).Msg("Sentry init failed, continuing without it")
		}
	}

	return &Impl{
		log:    slog.New(slogmulti.Fanout(handlers...)),
		sentry: withSentry,
	}
}

// NewNop discards everything; used by tests.
func NewNop() *Impl {
	return &Impl{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Impl) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *Impl) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *Impl) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *Impl) Error(msg string, args ...any) { l.log.Error(msg, args...) }

func (l *Impl) With(args ...any) Logger {
	return &Impl{log: l.log.With(args...), sentry: l.sentry}
}

func (l *Impl) WithComponent(name string) Logger {
	return l.With("component", name)
}

func (l *Impl) Printf(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Impl) Flush(timeout time.Duration) {
	if l.sentry {
		sentry.Flush(timeout)
	}
}

var _ Logger = (*Impl)(nil)
