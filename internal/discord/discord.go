package discord

import (
	"context"
	"errors"
	"time"
)

// ErrPermissionDenied and ErrNotFound are the two platform failure modes the
// moderation executor recovers from locally. Implementations wrap their
// transport errors so callers can branch with errors.Is.
var (
	ErrPermissionDenied = errors.New("discord: permission denied")
	ErrNotFound         = errors.New("discord: not found")
)

type MessageEvent struct {
	GuildID                  string
	ChannelID                string
	ChannelName              string
	MessageID                string
	AuthorID                 string
	AuthorIsBot              bool
	AuthorCanManageMessages  bool
	AuthorCanMentionEveryone bool
	Content                  string
	HasAttachment            bool
	Timestamp                time.Time
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type VoiceParticipant struct {
	UserID string
	IsBot  bool
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	GetBotUserID() (string, error)
	RegisterMessageCreateHandler(handler func(MessageEvent))
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	SendChannelMessage(channelID, content string) (messageID string, err error)
	DeleteMessage(channelID, messageID string) error
	DirectMessage(userID, content string) error
	BanUser(guildID, userID, reason string, purgeWindow time.Duration) error
	AddMemberRole(guildID, userID, roleID string) error
	GetUserVoiceChannelID(guildID, userID string) (string, error)
	ListVoiceChannelParticipants(guildID, channelID string) ([]VoiceParticipant, error)
}
