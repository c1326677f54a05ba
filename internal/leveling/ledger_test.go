package leveling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/repository"
)

type mockRepository struct {
	mu            sync.Mutex
	records       map[string]repository.ExperienceRecord
	upserts       []repository.UpsertExperienceInput
	rankRoles     []repository.RankRole
	levelingByGID map[string]bool
	getErr        error
	upsertErr     error
	listErr       error
	settingsErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		records:       make(map[string]repository.ExperienceRecord),
		levelingByGID: make(map[string]bool),
	}
}

func recordKey(guildID, userID string) string {
	return guildID + ":" + userID
}

func (m *mockRepository) GetExperience(_ context.Context, guildID, userID string) (*repository.ExperienceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[recordKey(guildID, userID)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (m *mockRepository) UpsertExperience(_ context.Context, input repository.UpsertExperienceInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, input)
	m.records[recordKey(input.GuildID, input.UserID)] = repository.ExperienceRecord{
		GuildID:    input.GuildID,
		UserID:     input.UserID,
		Experience: input.Experience,
		Level:      input.Level,
	}
	return nil
}

func (m *mockRepository) ListRankRoles(_ context.Context, guildID string) ([]repository.RankRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []repository.RankRole
	for _, rank := range m.rankRoles {
		if rank.GuildID == guildID {
			out = append(out, rank)
		}
	}
	return out, nil
}

func (m *mockRepository) UpsertRankRole(_ context.Context, rank repository.RankRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankRoles = append(m.rankRoles, rank)
	return nil
}

func (m *mockRepository) RemoveRankRole(_ context.Context, guildID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rankRoles[:0]
	for _, rank := range m.rankRoles {
		if rank.GuildID != guildID || rank.RoleID != roleID {
			kept = append(kept, rank)
		}
	}
	m.rankRoles = kept
	return nil
}

func (m *mockRepository) IsLevelingEnabled(_ context.Context, guildID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settingsErr != nil {
		return false, m.settingsErr
	}
	return m.levelingByGID[guildID], nil
}

func (m *mockRepository) SetLevelingEnabled(_ context.Context, guildID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levelingByGID[guildID] = enabled
	return nil
}

func (m *mockRepository) record(guildID, userID string) (repository.ExperienceRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey(guildID, userID)]
	return rec, ok
}

func (m *mockRepository) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts)
}

func newLevelingTestConfig() *config.Config {
	return &config.Config{
		Env:                    "test",
		DatabaseURL:            "postgres://unused",
		DiscordToken:           "token",
		DiscordGuildID:         "guild-1",
		MainChannelPrefix:      "main",
		ImageOnlyChannelPrefix: "nsfw_",
		TextXPMin:              15,
		TextXPMax:              25,
		VoiceXPMin:             18,
		VoiceXPMax:             30,
		VoiceTickInterval:      time.Minute,
		LevelDivisor:           50,
		SpamWindowSize:         10,
		BurstThreshold:         4,
		WarningTTL:             15 * time.Second,
		BanPurgeWindow:         24 * time.Hour,
	}
}

func TestLevelForExperience(t *testing.T) {
	cases := []struct {
		experience int
		divisor    int
		want       int
	}{
		{experience: 0, divisor: 50, want: 0},
		{experience: 49, divisor: 50, want: 0},
		{experience: 50, divisor: 50, want: 1},
		{experience: 149, divisor: 50, want: 1},
		{experience: 150, divisor: 50, want: 2},
		{experience: 300, divisor: 50, want: 3},
		{experience: 50, divisor: 100, want: 0},
	}
	for _, tc := range cases {
		if got := LevelForExperience(tc.experience, tc.divisor); got != tc.want {
			t.Fatalf("LevelForExperience(%d, %d) = %d, want %d", tc.experience, tc.divisor, got, tc.want)
		}
	}
}

func TestExperienceForLevel_RoundTripsWithLevelForExperience(t *testing.T) {
	for level := 0; level <= 20; level++ {
		exp := ExperienceForLevel(level, 50)
		if got := LevelForExperience(exp, 50); got != level {
			t.Fatalf("level %d maps to experience %d which derives level %d", level, exp, got)
		}
		if level > 0 {
			if got := LevelForExperience(exp-1, 50); got != level-1 {
				t.Fatalf("experience %d should still be level %d, got %d", exp-1, level-1, got)
			}
		}
	}
}

func TestAddExperience_CreatesRecordLazily(t *testing.T) {
	repo := newMockRepository()
	ledger := NewLedger(newLevelingTestConfig(), repo)

	result, err := ledger.AddExperience(context.Background(), "guild-1", "user-1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Experience != 50 || result.Level != 1 || !result.LeveledUp {
		t.Fatalf("unexpected result: %+v", result)
	}
	rec, ok := repo.record("guild-1", "user-1")
	if !ok {
		t.Fatal("expected record to be persisted")
	}
	if rec.Experience != 50 || rec.Level != 1 {
		t.Fatalf("unexpected persisted record: %+v", rec)
	}
}

func TestAddExperience_IsAssociative(t *testing.T) {
	repoSplit := newMockRepository()
	ledgerSplit := NewLedger(newLevelingTestConfig(), repoSplit)
	ctx := context.Background()

	if _, err := ledgerSplit.AddExperience(ctx, "guild-1", "user-1", 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ledgerSplit.AddExperience(ctx, "guild-1", "user-1", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repoSingle := newMockRepository()
	ledgerSingle := NewLedger(newLevelingTestConfig(), repoSingle)
	if _, err := ledgerSingle.AddExperience(ctx, "guild-1", "user-1", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	split, _ := repoSplit.record("guild-1", "user-1")
	single, _ := repoSingle.record("guild-1", "user-1")
	if split.Experience != single.Experience || split.Level != single.Level {
		t.Fatalf("split additions diverge from single addition: %+v vs %+v", split, single)
	}
}

func TestAddExperience_RejectsNonPositiveDelta(t *testing.T) {
	ledger := NewLedger(newLevelingTestConfig(), newMockRepository())
	if _, err := ledger.AddExperience(context.Background(), "guild-1", "user-1", 0); err == nil {
		t.Fatal("expected error for zero delta")
	}
	if _, err := ledger.AddExperience(context.Background(), "guild-1", "user-1", -5); err == nil {
		t.Fatal("expected error for negative delta")
	}
}

func TestAddExperience_PropagatesRepositoryErrors(t *testing.T) {
	repo := newMockRepository()
	repo.getErr = errors.New("boom")
	ledger := NewLedger(newLevelingTestConfig(), repo)
	if _, err := ledger.AddExperience(context.Background(), "guild-1", "user-1", 10); err == nil {
		t.Fatal("expected read error to propagate")
	}

	repo = newMockRepository()
	repo.upsertErr = errors.New("boom")
	ledger = NewLedger(newLevelingTestConfig(), repo)
	if _, err := ledger.AddExperience(context.Background(), "guild-1", "user-1", 10); err == nil {
		t.Fatal("expected write error to propagate")
	}
}

func TestSetExperience_RewritesLevel(t *testing.T) {
	repo := newMockRepository()
	ledger := NewLedger(newLevelingTestConfig(), repo)

	result, err := ledger.SetExperience(context.Background(), "guild-1", "user-1", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Experience != 150 || result.Level != 2 || !result.LeveledUp {
		t.Fatalf("unexpected result: %+v", result)
	}

	if _, err := ledger.SetExperience(context.Background(), "guild-1", "user-1", -1); err == nil {
		t.Fatal("expected error for negative experience")
	}
}

func TestAddLevels_KeepsPairConsistent(t *testing.T) {
	repo := newMockRepository()
	ledger := NewLedger(newLevelingTestConfig(), repo)

	result, err := ledger.AddLevels(context.Background(), "guild-1", "user-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Level != 2 || !result.LeveledUp {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Experience != ExperienceForLevel(2, 50) {
		t.Fatalf("experience not rewritten for new level: %+v", result)
	}
	if got := LevelForExperience(result.Experience, 50); got != result.Level {
		t.Fatalf("level/experience pair inconsistent: %+v", result)
	}
}
