package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/tokpost/internal/config"
)

type envConfig struct {
	Env                 string        `env:"ENV" envDefault:"production"`
	DiscordToken        string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID      string        `env:"DISCORD_GUILD_ID"`
	StagingDir          string        `env:"STAGING_DIR" envDefault:"videos"`
	MaxVideoBytes       int64         `env:"MAX_VIDEO_BYTES" envDefault:"524288000"`
	DownloadTimeout     time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"10m"`
	PublisherCommand    string        `env:"PUBLISHER_COMMAND" envDefault:"python3 cli.py"`
	PublisherConfigPath string        `env:"PUBLISHER_CONFIG_PATH" envDefault:"config.txt"`
	PublishTimeout      time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"15m"`
	ScheduleTimezone    string        `env:"SCHEDULE_TIMEZONE" envDefault:"UTC"`
	ScheduleMinLead     time.Duration `env:"SCHEDULE_MIN_LEAD" envDefault:"20m"`
	ScheduleMaxHorizon  time.Duration `env:"SCHEDULE_MAX_HORIZON" envDefault:"240h"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	UploadWebhookURL    string        `env:"UPLOAD_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                 raw.Env,
		DiscordToken:        raw.DiscordToken,
		DiscordGuildID:      raw.DiscordGuildID,
		StagingDir:          raw.StagingDir,
		MaxVideoBytes:       raw.MaxVideoBytes,
		DownloadTimeout:     raw.DownloadTimeout,
		PublisherCommand:    raw.PublisherCommand,
		PublisherConfigPath: raw.PublisherConfigPath,
		PublishTimeout:      raw.PublishTimeout,
		ScheduleTimezone:    raw.ScheduleTimezone,
		ScheduleMinLead:     raw.ScheduleMinLead,
		ScheduleMaxHorizon:  raw.ScheduleMaxHorizon,
		DatabaseURL:         raw.DatabaseURL,
		UploadWebhookURL:    raw.UploadWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
