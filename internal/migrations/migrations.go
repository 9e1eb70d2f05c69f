package migrations

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Dir is the migrations directory relative to the repository root, used
// when creating new migration files.
const Dir = "internal/migrations"

func setup() error {
	goose.SetBaseFS(FS)
	return goose.SetDialect("postgres")
}

// Open connects with the lib/pq driver goose runs on.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, ".")
}

func Status(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}

func Reset(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.ResetContext(ctx, db, ".")
}
