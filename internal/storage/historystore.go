// Package storage provides the local persistence layer for pbmctl: a
// YAML-backed store of unlocked analysis reports under history/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxbench/pbmctl/pkg/models"
	"gopkg.in/yaml.v3"
)

// HistoryManager defines the interface for the local analysis history store.
type HistoryManager interface {
	// Add stores a completed analysis record. A missing ID or Created time
	// is filled in. Returns the record ID.
	Add(record models.HistoryRecord) (string, error)
	Get(id string) (*models.HistoryRecord, error)
	// List returns record summaries, newest first.
	List() ([]models.HistorySummary, error)

	Load() error
	Save() error
}

type fileHistoryStore struct {
	basePath string
	index    models.HistoryIndex
}

// NewHistoryManager creates a HistoryManager backed by YAML files under
// history/ in the given base directory.
func NewHistoryManager(basePath string) HistoryManager {
	return &fileHistoryStore{
		basePath: basePath,
		index: models.HistoryIndex{
			Version: "1.0",
			Records: nil,
		},
	}
}

func (s *fileHistoryStore) historyDir() string {
	return filepath.Join(s.basePath, "history")
}

func (s *fileHistoryStore) indexPath() string {
	return filepath.Join(s.historyDir(), "index.yaml")
}

func (s *fileHistoryStore) recordPath(id string) string {
	return filepath.Join(s.historyDir(), id+".yaml")
}

// Add stores the record on disk and updates the persisted index.
func (s *fileHistoryStore) Add(record models.HistoryRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Created.IsZero() {
		record.Created = time.Now().UTC()
	}

	for _, existing := range s.index.Records {
		if existing.ID == record.ID {
			return "", fmt.Errorf("adding history record: %s already exists", record.ID)
		}
	}

	if err := os.MkdirAll(s.historyDir(), 0o755); err != nil {
		return "", fmt.Errorf("adding history record: creating directory: %w", err)
	}

	if err := s.saveYAML(s.recordPath(record.ID), &record); err != nil {
		return "", fmt.Errorf("adding history record: %w", err)
	}

	s.index.Records = append(s.index.Records, models.HistorySummary{
		ID:        record.ID,
		SessionID: record.SessionID,
		FileName:  record.FileName,
		Grade:     record.Grade,
		Created:   record.Created,
	})

	if err := s.Save(); err != nil {
		return "", fmt.Errorf("adding history record: %w", err)
	}

	return record.ID, nil
}

// Get loads the full record for an ID from disk.
func (s *fileHistoryStore) Get(id string) (*models.HistoryRecord, error) {
	found := false
	for _, summary := range s.index.Records {
		if summary.ID == id {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("history record %s not found", id)
	}

	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, fmt.Errorf("reading history record: %w", err)
	}

	var record models.HistoryRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing history record: %w", err)
	}

	return &record, nil
}

// List returns a copy of the index summaries sorted newest first.
func (s *fileHistoryStore) List() ([]models.HistorySummary, error) {
	if len(s.index.Records) == 0 {
		return nil, nil
	}

	sorted := make([]models.HistorySummary, len(s.index.Records))
	copy(sorted, s.index.Records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Created.After(sorted[j].Created)
	})

	return sorted, nil
}

// Load reads the history index from disk. A missing file is an empty store.
func (s *fileHistoryStore) Load() error {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading history index: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.index); err != nil {
		return fmt.Errorf("parsing history index: %w", err)
	}
	if s.index.Version == "" {
		s.index.Version = "1.0"
	}
	return nil
}

// Save writes the history index to disk.
func (s *fileHistoryStore) Save() error {
	if err := os.MkdirAll(s.historyDir(), 0o755); err != nil {
		return fmt.Errorf("saving history index: creating directory: %w", err)
	}
	return s.saveYAML(s.indexPath(), &s.index)
}

func (s *fileHistoryStore) saveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
