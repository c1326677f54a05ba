package leveling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
)

type taskHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs at most one presence task per (guild, user). Every voice
// state change supersedes the member's current task: the old task is
// cancelled and its termination awaited before a replacement is installed,
// so two tick loops can never credit the same member concurrently.
type Scheduler struct {
	client  discord.Client
	ledger  *Ledger
	ranks   *RankSync
	guildID string

	tickInterval time.Duration
	xpMin        int
	xpMax        int

	mu        sync.Mutex
	tasks     map[string]*taskHandle
	botUserID string
}

func NewScheduler(cfg *config.Config, client discord.Client, ledger *Ledger, ranks *RankSync) *Scheduler {
	return &Scheduler{
		client:       client,
		ledger:       ledger,
		ranks:        ranks,
		guildID:      cfg.DiscordGuildID,
		tickInterval: cfg.VoiceTickInterval,
		xpMin:        cfg.VoiceXPMin,
		xpMax:        cfg.VoiceXPMax,
		tasks:        make(map[string]*taskHandle),
	}
}

func (s *Scheduler) SetBotUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.botUserID = userID
}

func (s *Scheduler) HandleVoiceStateUpdate(ev discord.VoiceStateEvent) {
	if ev.UserIsBot {
		return
	}
	if s.guildID != "" && ev.GuildID != s.guildID {
		return
	}
	key := s.taskKey(ev.GuildID, ev.UserID)

	// Tear down the previous task completely before deciding anything else.
	s.mu.Lock()
	prev, ok := s.tasks[key]
	if ok {
		delete(s.tasks, key)
	}
	s.mu.Unlock()
	if ok {
		prev.cancel()
		<-prev.done
	}

	if ev.AfterChannelID == "" {
		return
	}
	if !s.eligible(ev.GuildID, ev.AfterChannelID, ev.UserID) {
		slog.Debug("voice channel does not qualify for presence XP", "guild_id", ev.GuildID, "channel_id", ev.AfterChannelID, "user_id", ev.UserID)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &taskHandle{cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	if _, exists := s.tasks[key]; exists {
		// A concurrent transition already installed a newer task.
		s.mu.Unlock()
		cancel()
		return
	}
	s.tasks[key] = handle
	s.mu.Unlock()

	slog.Info("presence XP task started", "guild_id", ev.GuildID, "channel_id", ev.AfterChannelID, "user_id", ev.UserID)
	go s.runPresenceTask(ctx, ev.GuildID, ev.UserID, key, handle)
}

// StopAll cancels every live task and waits for each to terminate.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	handles := make([]*taskHandle, 0, len(s.tasks))
	for _, h := range s.tasks {
		handles = append(handles, h)
	}
	s.tasks = make(map[string]*taskHandle)
	s.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
}

func (s *Scheduler) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) runPresenceTask(ctx context.Context, guildID, userID, key string, handle *taskHandle) {
	defer close(handle.done)
	defer s.releaseTask(key, handle)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Conditions may have changed since the task started; re-check
			// before every credit and terminate when they no longer hold.
			channelID, err := s.client.GetUserVoiceChannelID(guildID, userID)
			if err != nil {
				slog.Error("failed to resolve voice state during presence tick", "error", err, "guild_id", guildID, "user_id", userID)
				return
			}
			if channelID == "" || !s.eligible(guildID, channelID, userID) {
				slog.Debug("presence XP task ended: member no longer eligible", "guild_id", guildID, "user_id", userID)
				return
			}

			result, err := s.ledger.AddExperience(ctx, guildID, userID, randBetween(s.xpMin, s.xpMax))
			if err != nil {
				slog.Error("failed to credit voice XP", "error", err, "guild_id", guildID, "user_id", userID)
				continue
			}
			if result.LeveledUp {
				s.ranks.OnLevelUp(ctx, guildID, userID, result.Level)
			}
		}
	}
}

func (s *Scheduler) releaseTask(key string, handle *taskHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[key] == handle {
		delete(s.tasks, key)
	}
}

// eligible reports whether the member shares the channel with at least one
// other non-bot occupant.
func (s *Scheduler) eligible(guildID, channelID, userID string) bool {
	participants, err := s.client.ListVoiceChannelParticipants(guildID, channelID)
	if err != nil {
		slog.Error("failed to list voice channel participants", "error", err, "guild_id", guildID, "channel_id", channelID)
		return false
	}
	s.mu.Lock()
	botUserID := s.botUserID
	s.mu.Unlock()

	for _, p := range participants {
		if p.UserID == userID || p.IsBot || p.UserID == botUserID {
			continue
		}
		return true
	}
	return false
}

func (s *Scheduler) taskKey(guildID, userID string) string {
	return guildID + ":" + userID
}
