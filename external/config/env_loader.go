package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/yunolabs/yuno/internal/config"
)

type envConfig struct {
	Env                    string `env:"ENV" envDefault:"production"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	DiscordToken           string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID         string `env:"DISCORD_GUILD_ID,required"`
	MainChannelPrefix      string `env:"MAIN_CHANNEL_PREFIX" envDefault:"main"`
	ImageOnlyChannelPrefix string `env:"IMAGE_ONLY_CHANNEL_PREFIX" envDefault:"nsfw_"`
	TextXPMin              int    `env:"TEXT_XP_MIN" envDefault:"15"`
	TextXPMax              int    `env:"TEXT_XP_MAX" envDefault:"25"`
	VoiceXPMin             int    `env:"VOICE_XP_MIN" envDefault:"18"`
	VoiceXPMax             int    `env:"VOICE_XP_MAX" envDefault:"30"`
	VoiceTickSeconds       int    `env:"VOICE_TICK_SECONDS" envDefault:"60"`
	LevelDivisor           int    `env:"LEVEL_DIVISOR" envDefault:"50"`
	SpamWindowSize         int    `env:"SPAM_WINDOW_SIZE" envDefault:"10"`
	BurstThreshold         int    `env:"BURST_THRESHOLD" envDefault:"4"`
	WarningTTLSeconds      int    `env:"WARNING_TTL_SECONDS" envDefault:"15"`
	BanPurgeHours          int    `env:"BAN_PURGE_HOURS" envDefault:"24"`
	ModerationWebhookURL   string `env:"MODERATION_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		DatabaseURL:            raw.DatabaseURL,
		DiscordToken:           raw.DiscordToken,
		DiscordGuildID:         raw.DiscordGuildID,
		MainChannelPrefix:      raw.MainChannelPrefix,
		ImageOnlyChannelPrefix: raw.ImageOnlyChannelPrefix,
		TextXPMin:              raw.TextXPMin,
		TextXPMax:              raw.TextXPMax,
		VoiceXPMin:             raw.VoiceXPMin,
		VoiceXPMax:             raw.VoiceXPMax,
		VoiceTickInterval:      time.Duration(raw.VoiceTickSeconds) * time.Second,
		LevelDivisor:           raw.LevelDivisor,
		SpamWindowSize:         raw.SpamWindowSize,
		BurstThreshold:         raw.BurstThreshold,
		WarningTTL:             time.Duration(raw.WarningTTLSeconds) * time.Second,
		BanPurgeWindow:         time.Duration(raw.BanPurgeHours) * time.Hour,
		ModerationWebhookURL:   raw.ModerationWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
