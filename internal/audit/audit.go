package audit

import (
	"context"
	"time"
)

// Event describes one moderation verdict for the external audit webhook.
// Aborted marks verdicts whose platform action was denied and abandoned.
// Payload fields are stable; consumers key on Action.
type Event struct {
	GuildID    string    `json:"guild_id"`
	ChannelID  string    `json:"channel_id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	Reason     string    `json:"reason"`
	Aborted    bool      `json:"aborted"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Sender interface {
	SendModerationEvent(ctx context.Context, event Event) error
}
