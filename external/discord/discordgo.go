package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/yunolabs/yuno/internal/discord"
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(
		discordgo.IntentsGuilds |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentMessageContent)
	s.State.TrackVoice = true
	s.State.TrackChannels = true
	s.State.TrackMembers = true
	s.State.TrackRoles = true
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) RegisterMessageCreateHandler(handler func(discordpkg.MessageEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Author == nil || m.ID == "" {
			return
		}
		handler(discordpkg.MessageEvent{
			GuildID:                  m.GuildID,
			ChannelID:                m.ChannelID,
			ChannelName:              c.resolveChannelName(m.ChannelID),
			MessageID:                m.ID,
			AuthorID:                 m.Author.ID,
			AuthorIsBot:              m.Author.Bot,
			AuthorCanManageMessages:  c.authorHasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionManageMessages),
			AuthorCanMentionEveryone: c.authorHasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionMentionEveryone),
			Content:                  m.Content,
			HasAttachment:            len(m.Attachments) > 0,
			Timestamp:                m.Timestamp,
		})
	})
}

func (c *Client) RegisterVoiceStateUpdateHandler(handler func(discordpkg.VoiceStateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		if vs == nil {
			return
		}
		beforeChannelID := ""
		if vs.BeforeUpdate != nil {
			beforeChannelID = vs.BeforeUpdate.ChannelID
		}
		afterChannelID := vs.ChannelID
		if beforeChannelID == afterChannelID && beforeChannelID != "" {
			return
		}
		if vs.GuildID == "" || vs.UserID == "" {
			return
		}
		handler(discordpkg.VoiceStateEvent{
			GuildID:         vs.GuildID,
			UserID:          vs.UserID,
			UserIsBot:       c.resolveUserIsBot(vs.GuildID, vs.UserID, vs.VoiceState),
			BeforeChannelID: beforeChannelID,
			AfterChannelID:  afterChannelID,
		})
	})
}

func (c *Client) SendChannelMessage(channelID, content string) (string, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", wrapRESTError(err)
	}
	return msg.ID, nil
}

func (c *Client) DeleteMessage(channelID, messageID string) error {
	return wrapRESTError(c.session.ChannelMessageDelete(channelID, messageID))
}

func (c *Client) DirectMessage(userID, content string) error {
	dm, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return wrapRESTError(err)
	}
	_, err = c.session.ChannelMessageSend(dm.ID, content)
	return wrapRESTError(err)
}

func (c *Client) BanUser(guildID, userID, reason string, purgeWindow time.Duration) error {
	days := int(purgeWindow / (24 * time.Hour))
	if purgeWindow > 0 && days == 0 {
		days = 1
	}
	return wrapRESTError(c.session.GuildBanCreateWithReason(guildID, userID, reason, days))
}

func (c *Client) AddMemberRole(guildID, userID, roleID string) error {
	return wrapRESTError(c.session.GuildMemberRoleAdd(guildID, userID, roleID))
}

func (c *Client) GetUserVoiceChannelID(guildID, userID string) (string, error) {
	if c.session == nil {
		return "", nil
	}
	if c.session.State != nil {
		vs, err := c.session.State.VoiceState(guildID, userID)
		if err == nil && vs != nil {
			return vs.ChannelID, nil
		}
		guild, err := c.session.State.Guild(guildID)
		if err == nil && guild != nil {
			for _, state := range guild.VoiceStates {
				if state != nil && state.UserID == userID {
					return state.ChannelID, nil
				}
			}
		}
	}

	// Cache may be cold right after bot startup; ask Discord API directly as fallback.
	vs, err := c.session.UserVoiceState(guildID, userID)
	if err != nil {
		if isRESTNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if vs == nil {
		return "", nil
	}
	return vs.ChannelID, nil
}

func (c *Client) ListVoiceChannelParticipants(guildID, channelID string) ([]discordpkg.VoiceParticipant, error) {
	if c.session == nil || c.session.State == nil {
		return nil, nil
	}
	guild, err := c.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil, nil
	}
	participants := make([]discordpkg.VoiceParticipant, 0)
	seen := make(map[string]struct{})
	for _, state := range guild.VoiceStates {
		if state == nil || state.ChannelID != channelID || state.UserID == "" {
			continue
		}
		if _, exists := seen[state.UserID]; exists {
			continue
		}
		seen[state.UserID] = struct{}{}
		participants = append(participants, discordpkg.VoiceParticipant{
			UserID: state.UserID,
			IsBot:  c.resolveUserIsBot(guildID, state.UserID, state),
		})
	}
	return participants, nil
}

func (c *Client) resolveChannelName(channelID string) string {
	if c.session == nil {
		return ""
	}
	if c.session.State != nil {
		channel, err := c.session.State.Channel(channelID)
		if err == nil && channel != nil {
			return channel.Name
		}
	}
	channel, err := c.session.Channel(channelID)
	if err != nil || channel == nil {
		return ""
	}
	return channel.Name
}

func (c *Client) authorHasPermission(userID, channelID string, permission int64) bool {
	if c.session == nil {
		return false
	}
	perms, err := c.session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&permission != 0
}

func (c *Client) resolveUserIsBot(guildID, userID string, state *discordgo.VoiceState) bool {
	if state != nil && state.Member != nil && state.Member.User != nil {
		return state.Member.User.Bot
	}
	if c.session != nil && c.session.State != nil {
		member, err := c.session.State.Member(guildID, userID)
		if err == nil && member != nil && member.User != nil {
			return member.User.Bot
		}
	}
	if c.session == nil {
		return false
	}
	u, err := c.session.User(userID)
	if err != nil || u == nil {
		return false
	}
	return u.Bot
}

func wrapRESTError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}
	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", discordpkg.ErrPermissionDenied, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", discordpkg.ErrNotFound, err)
	default:
		return err
	}
}

func isRESTNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}
