package moderation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yunolabs/yuno/internal/audit"
	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
)

// Executor applies verdicts against the platform. Permission failures are
// recovered locally: the action is abandoned, a notice is posted and the
// already-committed flag transition stays as-is.
type Executor struct {
	client         discord.Client
	audit          audit.Sender
	warningTTL     time.Duration
	banPurgeWindow time.Duration
	burstThreshold int
}

func NewExecutor(cfg *config.Config, client discord.Client, auditSender audit.Sender) *Executor {
	return &Executor{
		client:         client,
		audit:          auditSender,
		warningTTL:     cfg.WarningTTL,
		banPurgeWindow: cfg.BanPurgeWindow,
		burstThreshold: cfg.BurstThreshold,
	}
}

func (x *Executor) Execute(ctx context.Context, v Verdict, ev discord.MessageEvent) {
	var executed bool
	switch v.Action {
	case ActionDelete:
		executed = x.deleteMessage(ev)
	case ActionWarn:
		x.warn(v, ev, false)
		executed = true
	case ActionWarnAndDelete:
		x.warn(v, ev, true)
		executed = true
	case ActionBan:
		executed = x.ban(v, ev)
	default:
		return
	}
	x.emitAudit(ctx, v, ev, !executed)
}

func (x *Executor) deleteMessage(ev discord.MessageEvent) bool {
	err := x.client.DeleteMessage(ev.ChannelID, ev.MessageID)
	if err == nil || errors.Is(err, discord.ErrNotFound) {
		return true
	}
	if errors.Is(err, discord.ErrPermissionDenied) {
		slog.Warn("message delete denied", "channel_id", ev.ChannelID, "message_id", ev.MessageID)
		if _, err := x.client.SendChannelMessage(ev.ChannelID, messageDeletePermissionDenied); err != nil {
			slog.Error("failed to post delete-denied notice", "error", err, "channel_id", ev.ChannelID)
		}
		return false
	}
	slog.Error("failed to delete message", "error", err, "channel_id", ev.ChannelID, "message_id", ev.MessageID)
	return false
}

func (x *Executor) warn(v Verdict, ev discord.MessageEvent, deleteOffending bool) {
	if deleteOffending {
		x.deleteMessage(ev)
	}

	// Image-channel warnings go to the offender's DMs, like the original
	// clutter rule; the others are visible channel notices that expire.
	if v.Category == CategoryTextInImageChannel {
		if err := x.client.DirectMessage(ev.AuthorID, warningMessage(v, ev.AuthorID, x.burstThreshold)); err != nil {
			slog.Debug("warning DM failed", "error", err, "user_id", ev.AuthorID)
		}
		return
	}

	warningID, err := x.client.SendChannelMessage(ev.ChannelID, warningMessage(v, ev.AuthorID, x.burstThreshold))
	if err != nil {
		slog.Error("failed to post warning", "error", err, "channel_id", ev.ChannelID, "user_id", ev.AuthorID)
		return
	}
	x.expireWarning(ev.ChannelID, warningID)
}

// expireWarning removes the warning notice after the configured display
// duration without blocking the caller.
func (x *Executor) expireWarning(channelID, warningID string) {
	time.AfterFunc(x.warningTTL, func() {
		if err := x.client.DeleteMessage(channelID, warningID); err != nil && !errors.Is(err, discord.ErrNotFound) {
			slog.Debug("failed to expire warning message", "error", err, "channel_id", channelID, "message_id", warningID)
		}
	})
}

func (x *Executor) ban(v Verdict, ev discord.MessageEvent) bool {
	// Best-effort notice before access is revoked; closed DMs are expected.
	if err := x.client.DirectMessage(ev.AuthorID, banDM(v.Reason)); err != nil {
		slog.Debug("ban DM failed", "error", err, "user_id", ev.AuthorID)
	}

	err := x.client.BanUser(ev.GuildID, ev.AuthorID, "[Auto] "+v.Reason, x.banPurgeWindow)
	if err != nil {
		if errors.Is(err, discord.ErrPermissionDenied) {
			slog.Warn("ban denied", "guild_id", ev.GuildID, "user_id", ev.AuthorID, "reason", v.Reason)
			if _, err := x.client.SendChannelMessage(ev.ChannelID, messageBanPermissionDenied); err != nil {
				slog.Error("failed to post ban-denied notice", "error", err, "channel_id", ev.ChannelID)
			}
			return false
		}
		slog.Error("failed to ban user", "error", err, "guild_id", ev.GuildID, "user_id", ev.AuthorID)
		return false
	}

	if _, err := x.client.SendChannelMessage(ev.ChannelID, banNotice(ev.AuthorID, v.Reason)); err != nil {
		slog.Error("failed to post ban notice", "error", err, "channel_id", ev.ChannelID)
	}
	return true
}

func (x *Executor) emitAudit(ctx context.Context, v Verdict, ev discord.MessageEvent, aborted bool) {
	err := x.audit.SendModerationEvent(ctx, audit.Event{
		GuildID:    ev.GuildID,
		ChannelID:  ev.ChannelID,
		UserID:     ev.AuthorID,
		Action:     v.Action.String(),
		Reason:     v.Reason,
		Aborted:    aborted,
		OccurredAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to send moderation audit event", "error", err, "guild_id", ev.GuildID, "user_id", ev.AuthorID)
	}
}
