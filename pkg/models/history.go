package models

import "time"

// HistoryRecord is a locally stored record of a completed analysis: the full
// report, the report-download reference, and the contact used to unlock it.
type HistoryRecord struct {
	ID          string         `yaml:"id"`
	SessionID   string         `yaml:"session_id"`
	FileName    string         `yaml:"file_name,omitempty"`
	Grade       string         `yaml:"grade"`
	DownloadURL string         `yaml:"download_url"`
	Created     time.Time      `yaml:"created"`
	Report      AnalysisReport `yaml:"report"`
}

// HistorySummary is the index entry for a stored analysis record.
type HistorySummary struct {
	ID        string    `yaml:"id"`
	SessionID string    `yaml:"session_id"`
	FileName  string    `yaml:"file_name,omitempty"`
	Grade     string    `yaml:"grade"`
	Created   time.Time `yaml:"created"`
}

// HistoryIndex is the on-disk index of all stored analysis records.
type HistoryIndex struct {
	Version string           `yaml:"version"`
	Records []HistorySummary `yaml:"records"`
}
