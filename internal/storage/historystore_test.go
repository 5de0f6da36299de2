package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxbench/pbmctl/pkg/models"
)

func sampleRecord(sessionID, grade string) models.HistoryRecord {
	return models.HistoryRecord{
		SessionID:   sessionID,
		FileName:    "contract.pdf",
		Grade:       grade,
		DownloadURL: "/api/download/" + sessionID,
		Report: models.AnalysisReport{
			ExecutiveSummary: "Summary for " + sessionID,
			OverallGrade:     grade,
		},
	}
}

func TestHistoryStore_AddAndGet(t *testing.T) {
	store := NewHistoryManager(t.TempDir())

	id, err := store.Add(sampleRecord("sess-1", "B"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated record id")
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SessionID != "sess-1" || got.Grade != "B" {
		t.Errorf("unexpected record %+v", got)
	}
	if got.Report.ExecutiveSummary != "Summary for sess-1" {
		t.Errorf("report not persisted: %+v", got.Report)
	}
	if got.Created.IsZero() {
		t.Error("Created should be filled in")
	}
}

func TestHistoryStore_GetUnknownID(t *testing.T) {
	store := NewHistoryManager(t.TempDir())
	if _, err := store.Get("nope"); err == nil {
		t.Error("expected error for unknown record id")
	}
}

func TestHistoryStore_DuplicateIDRejected(t *testing.T) {
	store := NewHistoryManager(t.TempDir())

	rec := sampleRecord("sess-1", "A")
	rec.ID = "fixed-id"
	if _, err := store.Add(rec); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if _, err := store.Add(rec); err == nil {
		t.Error("expected error adding a duplicate id")
	}
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	store := NewHistoryManager(t.TempDir())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, sessionID := range []string{"sess-old", "sess-mid", "sess-new"} {
		rec := sampleRecord(sessionID, "C")
		rec.Created = base.Add(time.Duration(i) * time.Hour)
		if _, err := store.Add(rec); err != nil {
			t.Fatalf("Add %s failed: %v", sessionID, err)
		}
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	want := []string{"sess-new", "sess-mid", "sess-old"}
	for i, sessionID := range want {
		if summaries[i].SessionID != sessionID {
			t.Errorf("summaries[%d].SessionID = %q, want %q", i, summaries[i].SessionID, sessionID)
		}
	}
}

func TestHistoryStore_ListEmpty(t *testing.T) {
	store := NewHistoryManager(t.TempDir())
	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected empty list, got %d entries", len(summaries))
	}
}

func TestHistoryStore_LoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewHistoryManager(dir)
	id, err := store.Add(sampleRecord("sess-1", "D"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A fresh store over the same directory sees the persisted index.
	reopened := NewHistoryManager(dir)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	summaries, err := reopened.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != id {
		t.Fatalf("expected the persisted record in the index, got %+v", summaries)
	}

	got, err := reopened.Get(id)
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if got.Grade != "D" {
		t.Errorf("grade = %q", got.Grade)
	}
}

func TestHistoryStore_LoadMissingIndexIsEmpty(t *testing.T) {
	store := NewHistoryManager(t.TempDir())
	if err := store.Load(); err != nil {
		t.Errorf("Load of missing index should succeed, got %v", err)
	}
}

func TestHistoryStore_LoadMalformedIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "history"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "history", "index.yaml"), []byte("{{not yaml"), 0o644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	store := NewHistoryManager(dir)
	if err := store.Load(); err == nil {
		t.Error("expected error loading malformed index")
	}
}

func TestHistoryStore_RecordFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryManager(dir)

	id, err := store.Add(sampleRecord("sess-1", "A"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "history", "index.yaml")); err != nil {
		t.Errorf("index.yaml not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "history", id+".yaml")); err != nil {
		t.Errorf("record file not written: %v", err)
	}
}
