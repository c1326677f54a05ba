package moderation

import (
	"regexp"
	"strings"

	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
)

var (
	invitePattern = regexp.MustCompile(`(discord\.(gg|io|me|li)|discordapp\.com/invite)/[a-zA-Z0-9]+`)
	linkPattern   = regexp.MustCompile(`(https?://|www\.)[a-zA-Z0-9\-]+\.[a-zA-Z0-9\-._~:/?#\[\]@!$&'()*+,;=%]+`)
)

// FlagView is the read side of the offense-flag store. The engine only reads
// flags; the committing transition is signalled back through Verdict.FlagOp.
type FlagView interface {
	HasFlag(userID string, category Category) bool
}

// Engine classifies a single message against the fixed rule set. It holds no
// mutable state; every call is a pure function of the event, the channel
// window snapshot and the author's current flags.
type Engine struct {
	mainPrefix     string
	imagePrefix    string
	burstThreshold int
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		mainPrefix:     strings.ToLower(cfg.MainChannelPrefix),
		imagePrefix:    strings.ToLower(cfg.ImageOnlyChannelPrefix),
		burstThreshold: cfg.BurstThreshold,
	}
}

// Evaluate returns exactly one verdict. Rules are checked in severity order
// and the first match wins; the default is allow.
func (e *Engine) Evaluate(ev discord.MessageEvent, window []WindowEntry, flags FlagView) Verdict {
	channelName := strings.ToLower(ev.ChannelName)

	if invitePattern.MatchString(ev.Content) {
		return Verdict{Action: ActionBan, Reason: "posted invite link"}
	}

	if strings.HasPrefix(channelName, e.imagePrefix) {
		if v, ok := e.evaluateImageChannelText(ev, flags); ok {
			return v
		}
	}

	if containsMassMention(ev.Content) && !ev.AuthorCanMentionEveryone {
		return Verdict{Action: ActionBan, Reason: "unauthorized mass mention"}
	}

	if strings.HasPrefix(channelName, e.mainPrefix) {
		if linkPattern.MatchString(ev.Content) {
			return e.twoStrike(ev, CategoryLinkInMain, flags, Verdict{
				Action:   ActionWarnAndDelete,
				Reason:   "posted link in main channel",
				Category: CategoryLinkInMain,
				FlagOp:   FlagOpSet,
			}, "posted link in main channel after warning")
		}
		if e.isBurst(ev.AuthorID, window) {
			return e.twoStrike(ev, CategoryMessageBurst, flags, Verdict{
				Action:   ActionWarn,
				Reason:   "message burst in main channel",
				Category: CategoryMessageBurst,
				FlagOp:   FlagOpSet,
			}, "message burst in main channel after warning")
		}
	}

	return allowVerdict()
}

// evaluateImageChannelText enforces the links-and-images-only rule. A message
// carrying a link or an attachment is fine; bare text is a two-strike offense.
func (e *Engine) evaluateImageChannelText(ev discord.MessageEvent, flags FlagView) (Verdict, bool) {
	hasLink := linkPattern.MatchString(ev.Content) || ev.HasAttachment
	if strings.TrimSpace(ev.Content) == "" || hasLink {
		return Verdict{}, false
	}
	return e.twoStrike(ev, CategoryTextInImageChannel, flags, Verdict{
		Action:   ActionWarnAndDelete,
		Reason:   "text in image-only channel",
		Category: CategoryTextInImageChannel,
		FlagOp:   FlagOpSet,
	}, "text in image-only channel after warning"), true
}

func (e *Engine) twoStrike(ev discord.MessageEvent, category Category, flags FlagView, first Verdict, escalatedReason string) Verdict {
	if flags.HasFlag(ev.AuthorID, category) {
		return Verdict{
			Action:   ActionBan,
			Reason:   escalatedReason,
			Category: category,
			FlagOp:   FlagOpClear,
		}
	}
	return first
}

// isBurst reports whether the newest burstThreshold window entries, which
// include the current message, all share the current author.
func (e *Engine) isBurst(authorID string, window []WindowEntry) bool {
	if len(window) < e.burstThreshold {
		return false
	}
	for _, entry := range window[len(window)-e.burstThreshold:] {
		if entry.AuthorID != authorID {
			return false
		}
	}
	return true
}

func containsMassMention(content string) bool {
	return strings.Contains(content, "@everyone") || strings.Contains(content, "@here")
}
