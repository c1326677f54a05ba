package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS experience_records (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		experience BIGINT NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (guild_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rank_roles (
		guild_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		min_level INTEGER NOT NULL,
		PRIMARY KEY (guild_id, role_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rank_roles_guild_level ON rank_roles (guild_id, min_level)`,
	`CREATE TABLE IF NOT EXISTS guild_leveling_settings (
		guild_id TEXT PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
