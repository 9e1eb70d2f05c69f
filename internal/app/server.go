package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/metrics"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

func newMux(log logger.Logger, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})
	mux.Handle("/metrics", m.Handler())
	return mux
}

func startHttpServer(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, m *metrics.Metrics) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           newMux(log, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server failed to start", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
