package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
	auditimpl "github.com/yunolabs/yuno/external/audit"
	configloader "github.com/yunolabs/yuno/external/config"
	"github.com/yunolabs/yuno/external/discord"
	repositoryimpl "github.com/yunolabs/yuno/external/repository"
	"github.com/yunolabs/yuno/internal/config"
	discordpkg "github.com/yunolabs/yuno/internal/discord"
	"github.com/yunolabs/yuno/internal/leveling"
	"github.com/yunolabs/yuno/internal/moderation"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	_ = godotenv.Load()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	auditimpl.RegisterDI(injector)
	moderation.RegisterDI(injector)
	leveling.RegisterDI(injector)

	return injector
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	filter, err := do.Invoke[*moderation.Filter](injector)
	if err != nil {
		slog.Error("failed to resolve moderation filter", "error", err)
		os.Exit(1)
	}
	awarder, err := do.Invoke[*leveling.Awarder](injector)
	if err != nil {
		slog.Error("failed to resolve XP awarder", "error", err)
		os.Exit(1)
	}
	scheduler, err := do.Invoke[*leveling.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve presence scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")

	botUserID, err := dc.GetBotUserID()
	if err != nil {
		slog.Error("failed to resolve bot user id", "error", err)
		os.Exit(1)
	}
	scheduler.SetBotUserID(botUserID)

	filter.OnAllowed(awarder.HandleAllowedMessage)
	filter.Start()
	defer filter.Stop()
	defer scheduler.StopAll()

	dc.RegisterMessageCreateHandler(filter.HandleMessage)
	dc.RegisterVoiceStateUpdateHandler(scheduler.HandleVoiceStateUpdate)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID)

	// Registered last so the gateway closes before the filter and scheduler
	// stop; events delivered during teardown are dropped, not dispatched.
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
}
