package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                    string
	DatabaseURL            string
	DiscordToken           string
	DiscordGuildID         string
	MainChannelPrefix      string
	ImageOnlyChannelPrefix string
	TextXPMin              int
	TextXPMax              int
	VoiceXPMin             int
	VoiceXPMax             int
	VoiceTickInterval      time.Duration
	LevelDivisor           int
	SpamWindowSize         int
	BurstThreshold         int
	WarningTTL             time.Duration
	BanPurgeWindow         time.Duration
	ModerationWebhookURL   string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.TextXPMin <= 0 || c.TextXPMax < c.TextXPMin {
		return fmt.Errorf("text XP range is invalid: min=%d max=%d", c.TextXPMin, c.TextXPMax)
	}
	if c.VoiceXPMin <= 0 || c.VoiceXPMax < c.VoiceXPMin {
		return fmt.Errorf("voice XP range is invalid: min=%d max=%d", c.VoiceXPMin, c.VoiceXPMax)
	}
	if c.VoiceTickInterval <= 0 {
		return fmt.Errorf("VOICE_TICK_SECONDS must be positive, got %s", c.VoiceTickInterval)
	}
	if c.LevelDivisor <= 0 {
		return fmt.Errorf("LEVEL_DIVISOR must be positive, got %d", c.LevelDivisor)
	}
	if c.SpamWindowSize <= 0 {
		return fmt.Errorf("SPAM_WINDOW_SIZE must be positive, got %d", c.SpamWindowSize)
	}
	if c.BurstThreshold < 2 || c.BurstThreshold > c.SpamWindowSize {
		return fmt.Errorf("BURST_THRESHOLD must be between 2 and the spam window size, got %d", c.BurstThreshold)
	}
	if c.WarningTTL <= 0 {
		return fmt.Errorf("WARNING_TTL_SECONDS must be positive, got %s", c.WarningTTL)
	}
	if c.BanPurgeWindow < 0 {
		return fmt.Errorf("BAN_PURGE_HOURS must not be negative, got %s", c.BanPurgeWindow)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "MAIN_CHANNEL_PREFIX", value: c.MainChannelPrefix},
		{name: "IMAGE_ONLY_CHANNEL_PREFIX", value: c.ImageOnlyChannelPrefix},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
