package leveling

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
	"github.com/yunolabs/yuno/internal/repository"
)

// Awarder credits randomized text XP for every message the moderation filter
// lets through, provided the guild has leveling switched on.
type Awarder struct {
	settings repository.SettingsRepository
	ledger   *Ledger
	ranks    *RankSync
	xpMin    int
	xpMax    int
}

func NewAwarder(cfg *config.Config, settings repository.SettingsRepository, ledger *Ledger, ranks *RankSync) *Awarder {
	return &Awarder{
		settings: settings,
		ledger:   ledger,
		ranks:    ranks,
		xpMin:    cfg.TextXPMin,
		xpMax:    cfg.TextXPMax,
	}
}

func (a *Awarder) HandleAllowedMessage(ev discord.MessageEvent) {
	if ev.AuthorIsBot || ev.GuildID == "" {
		return
	}
	ctx := context.Background()

	enabled, err := a.settings.IsLevelingEnabled(ctx, ev.GuildID)
	if err != nil {
		slog.Error("failed to read leveling setting", "error", err, "guild_id", ev.GuildID)
		return
	}
	if !enabled {
		return
	}

	result, err := a.ledger.AddExperience(ctx, ev.GuildID, ev.AuthorID, randBetween(a.xpMin, a.xpMax))
	if err != nil {
		slog.Error("failed to credit text XP", "error", err, "guild_id", ev.GuildID, "user_id", ev.AuthorID)
		return
	}
	if result.LeveledUp {
		a.ranks.OnLevelUp(ctx, ev.GuildID, ev.AuthorID, result.Level)
	}
}

func randBetween(minValue, maxValue int) int {
	if maxValue <= minValue {
		return minValue
	}
	return minValue + rand.IntN(maxValue-minValue+1)
}
