package settle

import (
	"context"
	"time"
)

type Mode string

const (
	ModePoll  Mode = "poll"
	ModeFixed Mode = "fixed"
)

// Stabilizer blocks until a page stops changing or budget is spent. It
// returns nil in both cases and an error only when stability could not be
// observed at all.
type Stabilizer interface {
	WaitStable(ctx context.Context, budget time.Duration) error
}

// Sampler reports a value that stops changing once rendering has finished,
// such as the DOM node count.
type Sampler func(ctx context.Context) (int, error)

type Config struct {
	Mode     Mode
	Budget   time.Duration
	Interval time.Duration
	// QuietPolls is how many consecutive unchanged samples count as settled.
	QuietPolls int
}

func (c Config) WithBudget(d time.Duration) Config {
	c.Budget = d
	return c
}

func DefaultConfig(mode Mode) Config {
	return Config{
		Mode:       mode,
		Interval:   250 * time.Millisecond,
		QuietPolls: 3,
	}
}

// Result describes how a wait ended.
type Result struct {
	Elapsed time.Duration
	Early   bool
	WaitErr error
}

// Wait lets s settle within the budget. The budget is the worst case in
// every mode; a failing stabilizer degrades to sleeping out the rest of it.
// Fixed mode never consults s.
func Wait(ctx context.Context, s Stabilizer, cfg Config) Result {
	start := time.Now()
	deadline := start.Add(cfg.Budget)

	if cfg.Mode == ModeFixed || s == nil {
		sleepUntil(ctx, deadline)
		return Result{Elapsed: time.Since(start)}
	}

	err := s.WaitStable(ctx, cfg.Budget)
	if ctx.Err() != nil {
		return Result{Elapsed: time.Since(start)}
	}
	if err != nil {
		sleepUntil(ctx, deadline)
		return Result{Elapsed: time.Since(start), WaitErr: err}
	}

	elapsed := time.Since(start)
	return Result{Elapsed: elapsed, Early: elapsed < cfg.Budget}
}

// Poll calls sample every interval until it returns the same value
// QuietPolls times in a row or the budget is spent. It backs drivers that
// have no native stability wait. A failing sample degrades to sleeping out
// the remaining budget.
func Poll(ctx context.Context, sample Sampler, cfg Config) Result {
	start := time.Now()
	deadline := start.Add(cfg.Budget)

	if sample == nil || cfg.Interval <= 0 {
		sleepUntil(ctx, deadline)
		return Result{Elapsed: time.Since(start)}
	}

	quietNeeded := cfg.QuietPolls
	if quietNeeded < 1 {
		quietNeeded = 1
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	timer := time.NewTimer(cfg.Budget)
	defer timer.Stop()

	prev, quiet := -1, 0
	for {
		select {
		case <-ctx.Done():
			return Result{Elapsed: time.Since(start)}
		case <-timer.C:
			return Result{Elapsed: time.Since(start)}
		case <-ticker.C:
			n, err := sample(ctx)
			if err != nil {
				sleepUntil(ctx, deadline)
				return Result{Elapsed: time.Since(start), WaitErr: err}
			}
			if n == prev {
				quiet++
				if quiet >= quietNeeded {
					return Result{Elapsed: time.Since(start), Early: true}
				}
				continue
			}
			prev, quiet = n, 0
		}
	}
}

func sleepUntil(ctx context.Context, deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
