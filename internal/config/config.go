package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Env                 string
	DiscordToken        string
	DiscordGuildID      string
	StagingDir          string
	MaxVideoBytes       int64
	DownloadTimeout     time.Duration
	PublisherCommand    string
	PublisherConfigPath string
	PublishTimeout      time.Duration
	ScheduleTimezone    string
	ScheduleMinLead     time.Duration
	ScheduleMaxHorizon  time.Duration
	DatabaseURL         string
	UploadWebhookURL    string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if strings.TrimSpace(req.value) == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.MaxVideoBytes <= 0 {
		return fmt.Errorf("MAX_VIDEO_BYTES must be positive, got %d", c.MaxVideoBytes)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be positive, got %s", c.DownloadTimeout)
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must be positive, got %s", c.PublishTimeout)
	}
	if c.ScheduleMinLead <= 0 {
		return fmt.Errorf("SCHEDULE_MIN_LEAD must be positive, got %s", c.ScheduleMinLead)
	}
	if c.ScheduleMaxHorizon <= c.ScheduleMinLead {
		return fmt.Errorf("SCHEDULE_MAX_HORIZON (%s) must be greater than SCHEDULE_MIN_LEAD (%s)", c.ScheduleMaxHorizon, c.ScheduleMinLead)
	}
	if _, err := time.LoadLocation(c.ScheduleTimezone); err != nil {
		return fmt.Errorf("SCHEDULE_TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "STAGING_DIR", value: c.StagingDir},
		{name: "PUBLISHER_COMMAND", value: c.PublisherCommand},
		{name: "PUBLISHER_CONFIG_PATH", value: c.PublisherConfigPath},
		{name: "SCHEDULE_TIMEZONE", value: c.ScheduleTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location falls back to UTC; Validate has already rejected unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) HistoryEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}
