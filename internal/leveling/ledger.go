package leveling

import (
	"context"
	"fmt"
	"math"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/repository"
)

// LevelForExperience derives the level from accumulated experience:
// floor((sqrt(1 + 8*experience/divisor) - 1) / 2).
func LevelForExperience(experience, divisor int) int {
	if experience <= 0 {
		return 0
	}
	return int((math.Sqrt(1+8*float64(experience)/float64(divisor)) - 1) / 2)
}

// ExperienceForLevel is the inverse: the minimum experience that yields the
// given level.
func ExperienceForLevel(level, divisor int) int {
	if level <= 0 {
		return 0
	}
	return divisor * level * (level + 1) / 2
}

type Result struct {
	Experience int
	Level      int
	LeveledUp  bool
}

// Ledger owns the (guild, user) experience records. Experience and the
// derived level are recomputed together and persisted as one write, so the
// pair never diverges from the formula at rest.
type Ledger struct {
	repo    repository.ExperienceRepository
	divisor int
}

func NewLedger(cfg *config.Config, repo repository.ExperienceRepository) *Ledger {
	return &Ledger{repo: repo, divisor: cfg.LevelDivisor}
}

func (l *Ledger) AddExperience(ctx context.Context, guildID, userID string, delta int) (Result, error) {
	if delta <= 0 {
		return Result{}, fmt.Errorf("experience delta must be positive, got %d", delta)
	}
	current, err := l.currentExperience(ctx, guildID, userID)
	if err != nil {
		return Result{}, err
	}
	return l.write(ctx, guildID, userID, current.Experience+delta, current.Level)
}

func (l *Ledger) SetExperience(ctx context.Context, guildID, userID string, experience int) (Result, error) {
	if experience < 0 {
		return Result{}, fmt.Errorf("experience must not be negative, got %d", experience)
	}
	current, err := l.currentExperience(ctx, guildID, userID)
	if err != nil {
		return Result{}, err
	}
	return l.write(ctx, guildID, userID, experience, current.Level)
}

// AddLevels raises the level by n and rewrites experience to the minimum for
// the new level, keeping the pair consistent.
func (l *Ledger) AddLevels(ctx context.Context, guildID, userID string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("level delta must be positive, got %d", n)
	}
	current, err := l.currentExperience(ctx, guildID, userID)
	if err != nil {
		return Result{}, err
	}
	newLevel := current.Level + n
	return l.write(ctx, guildID, userID, ExperienceForLevel(newLevel, l.divisor), current.Level)
}

func (l *Ledger) currentExperience(ctx context.Context, guildID, userID string) (repository.ExperienceRecord, error) {
	rec, err := l.repo.GetExperience(ctx, guildID, userID)
	if err != nil {
		return repository.ExperienceRecord{}, fmt.Errorf("failed to read experience record: %w", err)
	}
	if rec == nil {
		// Records are created lazily on the first XP-earning event.
		return repository.ExperienceRecord{GuildID: guildID, UserID: userID}, nil
	}
	return *rec, nil
}

func (l *Ledger) write(ctx context.Context, guildID, userID string, experience, previousLevel int) (Result, error) {
	level := LevelForExperience(experience, l.divisor)
	err := l.repo.UpsertExperience(ctx, repository.UpsertExperienceInput{
		GuildID:    guildID,
		UserID:     userID,
		Experience: experience,
		Level:      level,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to write experience record: %w", err)
	}
	return Result{
		Experience: experience,
		Level:      level,
		LeveledUp:  level > previousLevel,
	}, nil
}
