package moderation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
)

const eventQueueSize = 128

// Filter is the real-time moderation pipeline. A single dispatch goroutine
// consumes inbound message events in arrival order, so the channel window
// append order matches arrival order and every flag transition commits before
// the first platform call. Verdict execution runs off-loop so slow Discord
// I/O never stalls classification of later messages.
type Filter struct {
	guildID  string
	engine   *Engine
	state    *OffenderState
	executor *Executor

	allowed func(discord.MessageEvent)

	events    chan discord.MessageEvent
	stopMu    sync.RWMutex
	stopped   bool
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewFilter(cfg *config.Config, engine *Engine, state *OffenderState, executor *Executor) *Filter {
	return &Filter{
		guildID:  cfg.DiscordGuildID,
		engine:   engine,
		state:    state,
		executor: executor,
		events:   make(chan discord.MessageEvent, eventQueueSize),
		done:     make(chan struct{}),
	}
}

// OnAllowed registers the downstream handler for messages the filter lets
// through. Must be called before Start.
func (f *Filter) OnAllowed(handler func(discord.MessageEvent)) {
	f.allowed = handler
}

func (f *Filter) Start() {
	f.startOnce.Do(func() {
		go f.dispatchLoop()
	})
}

// Stop drains the queue and waits for the dispatch loop to terminate. Events
// arriving after Stop are dropped; the gateway may still deliver while the
// session shuts down.
func (f *Filter) Stop() {
	f.stopOnce.Do(func() {
		f.stopMu.Lock()
		f.stopped = true
		f.stopMu.Unlock()
		close(f.events)
		<-f.done
	})
}

// HandleMessage enqueues one inbound message event. Bot authors and messages
// outside the configured guild are dropped; authors with the manage-messages
// permission bypass classification entirely and are never recorded in the
// channel window.
func (f *Filter) HandleMessage(ev discord.MessageEvent) {
	if ev.AuthorIsBot || ev.GuildID == "" {
		return
	}
	if f.guildID != "" && ev.GuildID != f.guildID {
		return
	}
	if ev.AuthorCanManageMessages {
		f.passThrough(ev)
		return
	}

	f.stopMu.RLock()
	defer f.stopMu.RUnlock()
	if f.stopped {
		return
	}
	f.events <- ev
}

func (f *Filter) dispatchLoop() {
	defer close(f.done)
	for ev := range f.events {
		window := f.state.RecordMessage(ev.ChannelID, ev.AuthorID, ev.Timestamp)
		verdict := f.engine.Evaluate(ev, window, f.state)
		f.state.Apply(ev.AuthorID, verdict.Category, verdict.FlagOp)

		if verdict.Action == ActionAllow {
			f.passThrough(ev)
			continue
		}

		slog.Info("moderation verdict",
			"action", verdict.Action.String(),
			"reason", verdict.Reason,
			"guild_id", ev.GuildID,
			"channel_id", ev.ChannelID,
			"user_id", ev.AuthorID)
		go f.executor.Execute(context.Background(), verdict, ev)
	}
}

func (f *Filter) passThrough(ev discord.MessageEvent) {
	if f.allowed == nil {
		return
	}
	go f.allowed(ev)
}
