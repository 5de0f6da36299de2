package core

import (
	"context"
	"testing"
	"time"

	"github.com/rxbench/pbmctl/pkg/models"
)

// stubWatch returns a live watch against a never-terminating fetcher, for
// verifying teardown behavior.
func stubWatch() *Watch {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{status: &models.StatusResponse{Status: models.StatusProcessing, StatusMessage: "Analyzing"}},
	}}
	return StartWatch(fetcher, "stub", WatchOptions{
		InitialDelay:    time.Millisecond,
		Interval:        10 * time.Millisecond,
		CompletionDelay: time.Millisecond,
	})
}

func startAnalysis(t *testing.T, c *Controller, sessionID string) *Watch {
	t.Helper()
	var w *Watch
	err := c.StartAnalysis(sessionID, func(string) *Watch {
		w = stubWatch()
		return w
	})
	if err != nil {
		t.Fatalf("StartAnalysis failed: %v", err)
	}
	return w
}

func TestController_InitialState(t *testing.T) {
	c := NewController()
	if c.State() != StateUploading {
		t.Errorf("expected initial state %q, got %q", StateUploading, c.State())
	}
	if c.SessionID() != "" || c.Report() != nil || c.Watch() != nil {
		t.Error("new controller should carry no session, report, or watch")
	}
}

func TestController_HappyPath(t *testing.T) {
	c := NewController()
	w := startAnalysis(t, c, "sess-1")
	defer w.Stop()

	if c.State() != StateAnalyzing {
		t.Fatalf("expected %q after StartAnalysis, got %q", StateAnalyzing, c.State())
	}
	if c.SessionID() != "sess-1" {
		t.Errorf("expected session id to be recorded, got %q", c.SessionID())
	}
	if c.Watch() != w {
		t.Error("expected the started watch to be held by the controller")
	}

	if err := c.HandleOutcome(Outcome{}); err != nil {
		t.Fatalf("HandleOutcome failed: %v", err)
	}
	if c.State() != StateContactGate {
		t.Fatalf("expected %q after successful outcome, got %q", StateContactGate, c.State())
	}
	if c.Watch() != nil {
		t.Error("watch should be torn down after the outcome")
	}

	report := models.AnalysisReport{OverallGrade: "B", ExecutiveSummary: "Solid contract."}
	if err := c.UnlockReport(report, "/api/download/sess-1"); err != nil {
		t.Fatalf("UnlockReport failed: %v", err)
	}
	if c.State() != StateReportReady {
		t.Fatalf("expected %q, got %q", StateReportReady, c.State())
	}
	if c.Report() == nil || c.Report().OverallGrade != "B" {
		t.Error("expected the unlocked report to be held")
	}
	if c.DownloadURL() != "/api/download/sess-1" {
		t.Errorf("expected download URL to be held, got %q", c.DownloadURL())
	}
}

func TestController_StartAnalysisRequiresUploading(t *testing.T) {
	c := NewController()
	w := startAnalysis(t, c, "sess-1")
	defer w.Stop()

	if err := c.StartAnalysis("sess-2", func(string) *Watch { return nil }); err == nil {
		t.Error("expected error starting analysis while already analyzing")
	}
	if c.SessionID() != "sess-1" {
		t.Errorf("rejected transition must not mutate state, session is %q", c.SessionID())
	}
}

func TestController_StartAnalysisRequiresSessionID(t *testing.T) {
	c := NewController()
	if err := c.StartAnalysis("", func(string) *Watch { return stubWatch() }); err == nil {
		t.Error("expected error for empty session id")
	}
	if c.State() != StateUploading {
		t.Errorf("state must stay %q, got %q", StateUploading, c.State())
	}
}

func TestController_FailedOutcomeStaysAnalyzing(t *testing.T) {
	c := NewController()
	startAnalysis(t, c, "sess-1")

	if err := c.HandleOutcome(Outcome{Failed: true, Message: "Parse error"}); err != nil {
		t.Fatalf("HandleOutcome failed: %v", err)
	}
	if c.State() != StateAnalyzing {
		t.Errorf("failure must keep the workflow in %q, got %q", StateAnalyzing, c.State())
	}
	if c.AnalysisError() != "Parse error" {
		t.Errorf("expected error message to be recorded, got %q", c.AnalysisError())
	}
	if c.Watch() != nil {
		t.Error("watch must be torn down on failure")
	}
}

func TestController_FailedOutcomeWithoutMessageUsesFallback(t *testing.T) {
	c := NewController()
	startAnalysis(t, c, "sess-1")

	if err := c.HandleOutcome(Outcome{Failed: true}); err != nil {
		t.Fatalf("HandleOutcome failed: %v", err)
	}
	if c.AnalysisError() != FallbackErrorMessage {
		t.Errorf("expected fallback message, got %q", c.AnalysisError())
	}
}

func TestController_HandleOutcomeRequiresAnalyzing(t *testing.T) {
	c := NewController()
	if err := c.HandleOutcome(Outcome{}); err == nil {
		t.Error("expected error handling outcome in uploading state")
	}
}

func TestController_UnlockReportRequiresContactGate(t *testing.T) {
	c := NewController()
	if err := c.UnlockReport(models.AnalysisReport{}, ""); err == nil {
		t.Error("expected error unlocking report before contact gate")
	}

	startAnalysis(t, c, "sess-1")
	if err := c.UnlockReport(models.AnalysisReport{}, ""); err == nil {
		t.Error("expected error unlocking report while analyzing")
	}
}

func TestController_Reset(t *testing.T) {
	c := NewController()
	w := startAnalysis(t, c, "sess-1")
	_ = c.HandleOutcome(Outcome{})
	_ = c.UnlockReport(models.AnalysisReport{OverallGrade: "A"}, "/dl")

	c.Reset()

	if c.State() != StateUploading {
		t.Errorf("expected %q after reset, got %q", StateUploading, c.State())
	}
	if c.SessionID() != "" || c.Report() != nil || c.DownloadURL() != "" || c.AnalysisError() != "" {
		t.Error("reset must discard all accumulated results")
	}

	// A reset mid-analysis stops the watch.
	c2 := NewController()
	w = startAnalysis(t, c2, "sess-2")
	c2.Reset()
	select {
	case _, ok := <-w.Outcome():
		if ok {
			t.Error("stopped watch must not deliver an outcome")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch was not stopped by reset")
	}
}

func TestController_ResetAllowsNewAnalysis(t *testing.T) {
	c := NewController()
	startAnalysis(t, c, "sess-1")
	_ = c.HandleOutcome(Outcome{Failed: true, Message: "boom"})
	c.Reset()

	w := startAnalysis(t, c, "sess-2")
	defer w.Stop()
	if c.SessionID() != "sess-2" {
		t.Errorf("expected fresh session after reset, got %q", c.SessionID())
	}
	if c.AnalysisError() != "" {
		t.Errorf("expected cleared analysis error, got %q", c.AnalysisError())
	}
}

// End-to-end: controller driven by a real watch over a scripted fetcher,
// from upload acknowledgement through report unlock.
func TestWorkflow_EndToEnd(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{status: &models.StatusResponse{Status: models.StatusPending, StatusMessage: "Initializing analysis"}},
		{status: &models.StatusResponse{Status: models.StatusProcessing, StatusMessage: "Reading document content"}},
		{status: &models.StatusResponse{Status: models.StatusProcessing, StatusMessage: "Comparing to market benchmarks"}},
		{status: &models.StatusResponse{Status: models.StatusComplete, StatusMessage: "Analysis complete"}},
	}}

	c := NewController()
	var w *Watch
	err := c.StartAnalysis("sess-e2e", func(sessionID string) *Watch {
		w = StartWatch(fetcher, sessionID, fastOpts())
		return w
	})
	if err != nil {
		t.Fatalf("StartAnalysis failed: %v", err)
	}

	updates, outcome, ok := collectOutcome(t, w)
	if !ok || outcome.Failed {
		t.Fatalf("expected successful outcome, got ok=%v outcome=%+v", ok, outcome)
	}
	if len(updates) == 0 {
		t.Fatal("expected progress updates")
	}

	if err := c.HandleOutcome(outcome); err != nil {
		t.Fatalf("HandleOutcome failed: %v", err)
	}
	if c.State() != StateContactGate {
		t.Fatalf("expected contact gate, got %q", c.State())
	}

	report := models.AnalysisReport{OverallGrade: "C"}
	if err := c.UnlockReport(report, "/api/download/sess-e2e"); err != nil {
		t.Fatalf("UnlockReport failed: %v", err)
	}
	if c.State() != StateReportReady {
		t.Fatalf("expected report ready, got %q", c.State())
	}
}

// A consumer that stops mid-poll must leave the fetcher's context cancelled
// so an in-flight request aborts.
func TestWatch_StopCancelsFetcherContext(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{status: &models.StatusResponse{Status: models.StatusProcessing, StatusMessage: "Analyzing"}},
	}}

	w := StartWatch(fetcher, "sess-ctx", WatchOptions{
		InitialDelay:    time.Millisecond,
		Interval:        5 * time.Millisecond,
		CompletionDelay: time.Millisecond,
	})
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	time.Sleep(20 * time.Millisecond)

	fetcher.mu.Lock()
	ctx := fetcher.lastCtx
	fetcher.mu.Unlock()
	if ctx == nil {
		t.Fatal("fetcher was never called")
	}
	if ctx.Err() != context.Canceled {
		t.Errorf("expected cancelled context after Stop, got %v", ctx.Err())
	}
}
