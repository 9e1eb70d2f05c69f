package record

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/repositories"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
)

const table = "story_records"

type Pgx struct {
	pg     *pgxpool.Pool
	runID  uuid.UUID
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, log logger.Logger) *Pgx {
	runID := uuid.New()
	return &Pgx{
		pg:     pg,
		runID:  runID,
		logger: log.WithComponent("StoryRecordRepo").With("run_id", runID.String()),
	}
}

func (p *Pgx) Push(ctx context.Context, rec domain.StoryRecord) error {
	query, args, err := insertQuery(p.runID, rec, time.Now())
	if err != nil {
		return err
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert story record: %w", err)
	}

	p.logger.Debug("Record pushed", "story_id", rec.StoryID)
	return nil
}

func insertQuery(runID uuid.UUID, rec domain.StoryRecord, now time.Time) (string, []any, error) {
	media := rec.MediaData
	if media == nil {
		media = []domain.MediaItem{}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode media data: %w", err)
	}

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns(
			"run_id",
			"story_id",
			"username",
			"profile_picture",
			"is_verified",
			"story_timestamp",
			"song_data",
			"media_data",
			"screenshot_file_name",
			"created_at",
		).
		Values(
			runID,
			rec.StoryID,
			rec.Username,
			rec.ProfilePicture,
			rec.IsVerified,
			rec.Timestamp,
			rec.SongData,
			string(mediaJSON),
			rec.ScreenshotFileName,
			now,
		).
		ToSql()
	if err != nil {
		return "", nil, repositories.ErrBadQuery
	}
	return query, args, nil
}

var _ Repository = (*Pgx)(nil)
