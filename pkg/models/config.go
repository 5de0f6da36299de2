package models

import "time"

// ServiceConfig holds settings for reaching the analyzer service.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PollConfig holds the status-polling cadence. The interval is a fixed
// re-check period; CompletionDelay is the cosmetic pause after the progress
// display reaches 100% and before the workflow advances.
type PollConfig struct {
	InitialDelay    time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`
	Interval        time.Duration `yaml:"interval" mapstructure:"interval"`
	CompletionDelay time.Duration `yaml:"completion_delay" mapstructure:"completion_delay"`
}

// NotificationConfig holds optional webhook notification settings.
type NotificationConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// HistoryConfig controls local persistence of unlocked reports.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Config holds all pbmctl settings read from .pbmctl.yaml via Viper.
type Config struct {
	Service       ServiceConfig      `yaml:"service" mapstructure:"service"`
	Poll          PollConfig         `yaml:"poll" mapstructure:"poll"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	History       HistoryConfig      `yaml:"history" mapstructure:"history"`
}
