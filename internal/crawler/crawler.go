package crawler

import (
	"context"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=crawler.go -destination=mocks/mock.go

// Client runs the configured story requests through the processor.
type Client interface {
	// Run processes every request once and returns when all of them have
	// finished or ctx is done.
	Run(ctx context.Context) (Summary, error)
	// Schedule repeats Run every interval until ctx is done.
	Schedule(ctx context.Context, interval time.Duration) error
}

// Failure is one request that produced no record.
type Failure struct {
	URL  string
	Code string
	Err  error
}

type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Failure
	Duration  time.Duration
}
