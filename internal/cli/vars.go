package cli

import (
	"github.com/rxbench/pbmctl/internal/integration"
	"github.com/rxbench/pbmctl/internal/observability"
	"github.com/rxbench/pbmctl/internal/storage"
	"github.com/rxbench/pbmctl/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	// BasePath is the pbmctl data directory.
	BasePath string

	// Client talks to the analyzer service.
	Client integration.AnalyzerAPI

	// Config holds the loaded configuration.
	Config *models.Config

	// History stores unlocked reports locally. Nil when history is disabled.
	History storage.HistoryManager

	// EventLog records workflow events. Nil when observability is disabled.
	EventLog observability.EventLog

	// MetricsCalc aggregates usage metrics from the event log.
	MetricsCalc observability.MetricsCalculator

	// Notifier announces analysis outcomes to a webhook. Nil when unset.
	Notifier observability.Notifier
)
