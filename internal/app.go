// Package internal provides the App struct that wires all components of the
// pbmctl workflow together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/rxbench/pbmctl/internal/cli"
	"github.com/rxbench/pbmctl/internal/core"
	"github.com/rxbench/pbmctl/internal/integration"
	"github.com/rxbench/pbmctl/internal/observability"
	"github.com/rxbench/pbmctl/internal/storage"
	"github.com/rxbench/pbmctl/pkg/models"
)

// App holds all service dependencies for pbmctl.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Integration services
	Client integration.AnalyzerAPI

	// Storage layer
	History storage.HistoryManager

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of pbmctl. basePath is the root
// directory where local data is stored (typically the directory containing
// .pbmctl.yaml, or the current directory).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Integration services ---
	app.Client = integration.NewAnalyzerClient(cfg.Service.BaseURL, cfg.Service.Timeout)

	// --- Storage layer ---
	if cfg.History.Enabled {
		app.History = storage.NewHistoryManager(basePath)
		_ = app.History.Load() // Non-fatal: empty history on first use.
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".pbmctl_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Client = app.Client
	cli.Config = app.Config
	cli.History = app.History
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the pbmctl data directory.
// It checks the PBMCTL_HOME env var, then walks up from the current directory
// looking for a .pbmctl.yaml file.
func ResolveBasePath() string {
	if home := os.Getenv("PBMCTL_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".pbmctl.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}
