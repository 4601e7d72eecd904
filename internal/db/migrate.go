package db

import (
	"context"
	"database/sql"
)

// schema is kept to the SQL subset shared by postgres and sqlite.
// Statements are idempotent and run one at a time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		email text NOT NULL UNIQUE,
		password_hash text,
		name text NOT NULL,
		created_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id text PRIMARY KEY,
		owner_id text NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title text NOT NULL,
		content text NOT NULL,
		created_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS posts_owner_id_idx ON posts (owner_id)`,
}

func RunMigration(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
