package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yunolabs/yuno/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetExperience(ctx context.Context, guildID, userID string) (*repository.ExperienceRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT guild_id, user_id, experience, level, created_at, updated_at
		 FROM experience_records WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID)
	var rec repository.ExperienceRecord
	err := row.Scan(&rec.GuildID, &rec.UserID, &rec.Experience, &rec.Level, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) UpsertExperience(ctx context.Context, input repository.UpsertExperienceInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO experience_records (guild_id, user_id, experience, level)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (guild_id, user_id)
		 DO UPDATE SET experience = $3, level = $4, updated_at = NOW()`,
		input.GuildID, input.UserID, input.Experience, input.Level)
	return err
}

func (r *PostgresRepository) ListRankRoles(ctx context.Context, guildID string) ([]repository.RankRole, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_id, role_id, min_level
		 FROM rank_roles WHERE guild_id = $1 ORDER BY min_level ASC`,
		guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.RankRole
	for rows.Next() {
		var rank repository.RankRole
		if err := rows.Scan(&rank.GuildID, &rank.RoleID, &rank.MinLevel); err != nil {
			return nil, err
		}
		list = append(list, rank)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpsertRankRole(ctx context.Context, rank repository.RankRole) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rank_roles (guild_id, role_id, min_level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (guild_id, role_id) DO UPDATE SET min_level = $3`,
		rank.GuildID, rank.RoleID, rank.MinLevel)
	return err
}

func (r *PostgresRepository) RemoveRankRole(ctx context.Context, guildID, roleID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM rank_roles WHERE guild_id = $1 AND role_id = $2`,
		guildID, roleID)
	return err
}

func (r *PostgresRepository) IsLevelingEnabled(ctx context.Context, guildID string) (bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT enabled FROM guild_leveling_settings WHERE guild_id = $1`,
		guildID)
	var enabled bool
	if err := row.Scan(&enabled); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return enabled, nil
}

func (r *PostgresRepository) SetLevelingEnabled(ctx context.Context, guildID string, enabled bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild_leveling_settings (guild_id, enabled)
		 VALUES ($1, $2)
		 ON CONFLICT (guild_id) DO UPDATE SET enabled = $2`,
		guildID, enabled)
	return err
}
