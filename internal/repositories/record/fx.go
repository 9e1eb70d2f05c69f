package record

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("record_repository",
	fx.Provide(New),
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	// Pool is only provided when the postgres sink is selected.
	Pool *pgxpool.Pool `optional:"true"`
}

// New selects the record sink named by STORAGE_SINK.
func New(opts Opts) (Repository, error) {
	switch opts.Config.Storage.Sink {
	case "dataset":
		d, err := NewDataset(opts.Config.Storage.Dir, DefaultDataset, opts.Logger)
		if err != nil {
			return nil, err
		}
		opts.Logger.Info("Using dataset record sink", "dir", d.Dir())
		return d, nil
	case "postgres":
		if opts.Pool == nil {
			return nil, fmt.Errorf("postgres sink selected but no pool is configured")
		}
		opts.Logger.Info("Using postgres record sink")
		return NewPgx(opts.Pool, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported record sink %q", opts.Config.Storage.Sink)
	}
}
