package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/tokpost/external/config"
	"github.com/foxseedlab/tokpost/external/discord"
	publisherimpl "github.com/foxseedlab/tokpost/external/publisher"
	repositoryimpl "github.com/foxseedlab/tokpost/external/repository"
	"github.com/foxseedlab/tokpost/external/timeparse"
	webhookimpl "github.com/foxseedlab/tokpost/external/webhook"
	"github.com/foxseedlab/tokpost/internal/config"
	discordpkg "github.com/foxseedlab/tokpost/internal/discord"
	"github.com/foxseedlab/tokpost/internal/session"
	"github.com/foxseedlab/tokpost/internal/staging"
	"github.com/foxseedlab/tokpost/internal/upload"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "staging_dir", cfg.StagingDir, "timezone", cfg.ScheduleTimezone)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: purging staging directory")
	purgeStagingDir(injector)

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
	publisherimpl.RegisterDI(injector)
	timeparse.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	staging.RegisterDI(injector)
	upload.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

// Conversations live only in memory, so anything left in the staging dir
// belongs to a previous process.
func purgeStagingDir(injector do.Injector) {
	janitor, err := do.Invoke[*staging.Janitor](injector)
	if err != nil {
		slog.Error("failed to prepare staging directory", "error", err)
		os.Exit(1)
	}
	if _, err := janitor.Purge(); err != nil {
		slog.Warn("failed to purge staging directory", "error", err, "dir", janitor.Dir())
	}
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
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

	if err := dc.UpsertSlashCommands(cfg.DiscordGuildID, session.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterMessageHandler(manager.HandleMessage)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "commands", session.SlashCommandNames())
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
}
