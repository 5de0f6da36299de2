package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rxbench/pbmctl/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager loads and validates pbmctl configuration from
// .pbmctl.yaml files.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .pbmctl.yaml resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Service: models.ServiceConfig{
			BaseURL: "http://localhost:8000",
			// Generous ceiling covering worst-case upload and report
			// generation latency; deliberately much larger than the poll
			// interval.
			Timeout: 3 * time.Minute,
		},
		Poll: models.PollConfig{
			InitialDelay:    time.Second,
			Interval:        2 * time.Second,
			CompletionDelay: 500 * time.Millisecond,
		},
		History: models.HistoryConfig{Enabled: true},
	}
}

// LoadConfig reads .pbmctl.yaml from the base path using Viper. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".pbmctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("service.base_url", cfg.Service.BaseURL)
	v.SetDefault("service.timeout", cfg.Service.Timeout)
	v.SetDefault("poll.initial_delay", cfg.Poll.InitialDelay)
	v.SetDefault("poll.interval", cfg.Poll.Interval)
	v.SetDefault("poll.completion_delay", cfg.Poll.CompletionDelay)
	v.SetDefault("notifications.webhook_url", "")
	v.SetDefault("history.enabled", cfg.History.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, return defaults.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pbmctl.yaml: %w", err)
	}

	cfg.Service.BaseURL = v.GetString("service.base_url")
	cfg.Service.Timeout = v.GetDuration("service.timeout")
	cfg.Poll.InitialDelay = v.GetDuration("poll.initial_delay")
	cfg.Poll.Interval = v.GetDuration("poll.interval")
	cfg.Poll.CompletionDelay = v.GetDuration("poll.completion_delay")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")
	cfg.History.Enabled = v.GetBool("history.enabled")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Service.BaseURL) == "" {
		errs = append(errs, "service.base_url must not be empty")
	} else if u, err := url.Parse(cfg.Service.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("service.base_url %q is not a valid URL", cfg.Service.BaseURL))
	}

	if cfg.Service.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("service.timeout must be positive, got %s", cfg.Service.Timeout))
	}

	if cfg.Poll.Interval <= 0 {
		errs = append(errs, fmt.Sprintf("poll.interval must be positive, got %s", cfg.Poll.Interval))
	}

	if cfg.Poll.InitialDelay < 0 {
		errs = append(errs, fmt.Sprintf("poll.initial_delay must not be negative, got %s", cfg.Poll.InitialDelay))
	}

	if cfg.Poll.CompletionDelay < 0 {
		errs = append(errs, fmt.Sprintf("poll.completion_delay must not be negative, got %s", cfg.Poll.CompletionDelay))
	}

	if wh := cfg.Notifications.WebhookURL; wh != "" {
		if u, err := url.Parse(wh); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("notifications.webhook_url %q is not a valid URL", wh))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
