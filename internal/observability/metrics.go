package observability

import (
	"fmt"
	"time"
)

// Metrics holds usage metrics derived from the event log.
type Metrics struct {
	AnalysesStarted   int            `json:"analyses_started"`
	AnalysesCompleted int            `json:"analyses_completed"`
	AnalysesFailed    int            `json:"analyses_failed"`
	ReportsUnlocked   int            `json:"reports_unlocked"`
	ReportsDownloaded int            `json:"reports_downloaded"`
	KnowledgeUpdates  int            `json:"knowledge_updates"`
	GradeCounts       map[string]int `json:"grade_counts"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		GradeCounts: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventAnalysisStarted:
			m.AnalysesStarted++
		case EventAnalysisCompleted:
			m.AnalysesCompleted++
		case EventAnalysisFailed:
			m.AnalysesFailed++
		case EventReportUnlocked:
			m.ReportsUnlocked++
			if grade, ok := event.Data["grade"].(string); ok && grade != "" {
				m.GradeCounts[grade]++
			}
		case EventReportDownloaded:
			m.ReportsDownloaded++
		case EventKnowledgeUpdated:
			m.KnowledgeUpdates++
		}
	}

	return m, nil
}
