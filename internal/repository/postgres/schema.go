package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var Schema string

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
