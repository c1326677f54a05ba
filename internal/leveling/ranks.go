package leveling

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yunolabs/yuno/internal/discord"
	"github.com/yunolabs/yuno/internal/repository"
)

const messageLevelUpFormat = "GG <@%s>! You reached **Level %d**!"

// RankSync reacts to level-ups: it congratulates the member and grants every
// rank role whose threshold the new level meets. Both sides are best-effort;
// a failed role grant never blocks the remaining grants.
type RankSync struct {
	client discord.Client
	ranks  repository.RankRepository
}

func NewRankSync(client discord.Client, ranks repository.RankRepository) *RankSync {
	return &RankSync{client: client, ranks: ranks}
}

func (r *RankSync) OnLevelUp(ctx context.Context, guildID, userID string, level int) {
	if err := r.client.DirectMessage(userID, fmt.Sprintf(messageLevelUpFormat, userID, level)); err != nil {
		slog.Debug("level-up DM failed", "error", err, "guild_id", guildID, "user_id", userID)
	}

	rankRoles, err := r.ranks.ListRankRoles(ctx, guildID)
	if err != nil {
		slog.Error("failed to list rank roles", "error", err, "guild_id", guildID)
		return
	}
	for _, rank := range rankRoles {
		if level < rank.MinLevel {
			continue
		}
		if err := r.client.AddMemberRole(guildID, userID, rank.RoleID); err != nil {
			slog.Warn("failed to grant rank role", "error", err, "guild_id", guildID, "user_id", userID, "role_id", rank.RoleID)
		}
	}
}
