package repository

import "context"

type UpsertExperienceInput struct {
	GuildID    string
	UserID     string
	Experience int
	Level      int
}

type ExperienceRepository interface {
	// GetExperience returns nil when no record exists yet.
	GetExperience(ctx context.Context, guildID, userID string) (*ExperienceRecord, error)
	// UpsertExperience writes experience and level as one atomic row update.
	UpsertExperience(ctx context.Context, input UpsertExperienceInput) error
}

type RankRepository interface {
	ListRankRoles(ctx context.Context, guildID string) ([]RankRole, error)
	UpsertRankRole(ctx context.Context, rank RankRole) error
	RemoveRankRole(ctx context.Context, guildID, roleID string) error
}

type SettingsRepository interface {
	IsLevelingEnabled(ctx context.Context, guildID string) (bool, error)
	SetLevelingEnabled(ctx context.Context, guildID string, enabled bool) error
}

type Repository interface {
	ExperienceRepository
	RankRepository
	SettingsRepository
}
