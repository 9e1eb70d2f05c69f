package record

import (
	"context"

	"github.com/orgball2608/insta-story-capture/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=record.go -destination=mocks/mock.go

// Repository is the append-only sink for captured story records.
type Repository interface {
	Push(ctx context.Context, rec domain.StoryRecord) error
}
