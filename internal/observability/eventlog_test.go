package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONLEventLog_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Level: "INFO", Type: EventAnalysisStarted, Message: "analysis started",
			Data: map[string]any{"session_id": "sess-1"}},
		{Time: base.Add(time.Minute), Level: "INFO", Type: EventAnalysisCompleted, Message: "analysis completed"},
		{Time: base.Add(2 * time.Minute), Level: "ERROR", Type: EventAnalysisFailed, Message: "analysis failed"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Type != EventAnalysisStarted {
		t.Errorf("first event type = %q", got[0].Type)
	}
	if got[0].Data["session_id"] != "sess-1" {
		t.Errorf("event data not preserved: %v", got[0].Data)
	}
}

func TestJSONLEventLog_Filters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, typ := range []string{EventAnalysisStarted, EventAnalysisCompleted, EventReportUnlocked} {
		level := "INFO"
		if i == 1 {
			level = "ERROR"
		}
		if err := log.Write(Event{Time: base.Add(time.Duration(i) * time.Hour), Level: level, Type: typ}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	byType, err := log.Read(EventFilter{Type: EventReportUnlocked})
	if err != nil {
		t.Fatalf("reading by type: %v", err)
	}
	if len(byType) != 1 || byType[0].Type != EventReportUnlocked {
		t.Errorf("type filter: got %+v", byType)
	}

	byLevel, err := log.Read(EventFilter{Level: "ERROR"})
	if err != nil {
		t.Fatalf("reading by level: %v", err)
	}
	if len(byLevel) != 1 || byLevel[0].Type != EventAnalysisCompleted {
		t.Errorf("level filter: got %+v", byLevel)
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(90 * time.Minute)
	byWindow, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading by window: %v", err)
	}
	if len(byWindow) != 1 || byWindow[0].Type != EventAnalysisCompleted {
		t.Errorf("window filter: got %+v", byWindow)
	}
}

func TestJSONLEventLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	if err := log.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventAnalysisStarted}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("closing log: %v", err)
	}

	log2, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("reopening event log: %v", err)
	}
	defer log2.Close()
	if err := log2.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventAnalysisCompleted}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	got, err := log2.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 events after reopen, got %d", len(got))
	}
}

func TestJSONLEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	if err := log.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventAnalysisStarted}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log file: %v", err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatalf("appending garbage: %v", err)
	}
	_ = f.Close()

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected malformed line to be skipped, got %d events", len(got))
	}
}

func TestRecord_NilLogIsNoOp(t *testing.T) {
	Record(nil, "INFO", EventAnalysisStarted, "ignored", nil)
}

func TestRecord_FillsTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	before := time.Now().UTC().Add(-time.Second)
	Record(log, "INFO", EventReportDownloaded, "report downloaded", map[string]any{"session_id": "sess-1"})

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Time.Before(before) {
		t.Errorf("expected a current timestamp, got %v", got[0].Time)
	}
	if got[0].Message != "report downloaded" {
		t.Errorf("message = %q", got[0].Message)
	}
}
