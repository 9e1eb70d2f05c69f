package fx

import (
	"context"
	"fmt"

	"github.com/orgball2608/insta-story-capture/internal/blobstore"
	"github.com/orgball2608/insta-story-capture/internal/blobstore/fsimpl"
	"github.com/orgball2608/insta-story-capture/internal/blobstore/s3impl"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("blobstore",
	fx.Provide(New),
)

// New selects the blob backend named by STORAGE_BLOB.
func New(cfg *config.Config, log logger.Logger) (blobstore.Store, error) {
	switch cfg.Storage.Blob {
	case "fs":
		s := fsimpl.New(cfg.Storage.Dir, fsimpl.DefaultStore)
		log.Info("Using filesystem blob store", "dir", s.Dir())
		return s, nil
	case "s3":
		s, err := s3impl.New(context.Background(), s3impl.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			KeyPrefix:       cfg.S3.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Using S3 blob store", "bucket", cfg.S3.Bucket)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported blob store %q", cfg.Storage.Blob)
	}
}
