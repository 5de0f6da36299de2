package core

import (
	"fmt"

	"github.com/rxbench/pbmctl/pkg/models"
)

// WorkflowState is the current step of one analysis workflow instance.
// It advances monotonically; only Reset returns to StateUploading.
type WorkflowState string

const (
	StateUploading   WorkflowState = "uploading"
	StateAnalyzing   WorkflowState = "analyzing"
	StateContactGate WorkflowState = "contact_gate"
	StateReportReady WorkflowState = "report_ready"
)

// Controller is the session workflow state machine. It owns the current
// step, the server-issued session identifier, the active status watch, and
// the accumulated result.
//
// Invariants: the session ID is set exactly when the state is Analyzing,
// ContactGate, or ReportReady; the report is set exactly when the state is
// ReportReady; at most one watch is active at a time, and it is torn down on
// leaving Analyzing.
//
// Controller is not safe for concurrent use. It is designed for a single
// cooperative consumer (the TUI model or a command loop) that serializes all
// calls.
type Controller struct {
	state       WorkflowState
	sessionID   string
	watch       *Watch
	analysisErr string
	report      *models.AnalysisReport
	downloadURL string
}

// NewController returns a controller in StateUploading.
func NewController() *Controller {
	return &Controller{state: StateUploading}
}

// State returns the current workflow state.
func (c *Controller) State() WorkflowState { return c.state }

// SessionID returns the server-issued session identifier, empty while in
// StateUploading.
func (c *Controller) SessionID() string { return c.sessionID }

// AnalysisError returns the surfaced remote-job failure message, empty
// unless a poll resolved to an error while Analyzing.
func (c *Controller) AnalysisError() string { return c.analysisErr }

// Report returns the unlocked analysis report, nil before StateReportReady.
func (c *Controller) Report() *models.AnalysisReport { return c.report }

// DownloadURL returns the report-download reference obtained with the report.
func (c *Controller) DownloadURL() string { return c.downloadURL }

// Watch returns the active status watch, nil outside StateAnalyzing.
func (c *Controller) Watch() *Watch { return c.watch }

// StartAnalysis records a successful upload and advances to StateAnalyzing,
// starting the status watch via startWatch. Valid only from StateUploading.
func (c *Controller) StartAnalysis(sessionID string, startWatch func(sessionID string) *Watch) error {
	if c.state != StateUploading {
		return fmt.Errorf("cannot start analysis from state %q", c.state)
	}
	if sessionID == "" {
		return fmt.Errorf("cannot start analysis without a session id")
	}

	c.sessionID = sessionID
	c.analysisErr = ""
	c.state = StateAnalyzing
	c.watch = startWatch(sessionID)
	return nil
}

// HandleOutcome consumes the watch's terminal outcome. Completion advances
// to StateContactGate; failure keeps the workflow in StateAnalyzing with the
// error recorded, leaving restart to an explicit Reset. Either way the watch
// is torn down. Valid only from StateAnalyzing.
func (c *Controller) HandleOutcome(outcome Outcome) error {
	if c.state != StateAnalyzing {
		return fmt.Errorf("unexpected poll outcome in state %q", c.state)
	}

	c.teardownWatch()

	if outcome.Failed {
		msg := outcome.Message
		if msg == "" {
			msg = FallbackErrorMessage
		}
		c.analysisErr = msg
		return nil
	}

	c.state = StateContactGate
	return nil
}

// UnlockReport records an accepted contact submission and advances to
// StateReportReady, storing the report and its download reference. Valid
// only from StateContactGate.
func (c *Controller) UnlockReport(report models.AnalysisReport, downloadURL string) error {
	if c.state != StateContactGate {
		return fmt.Errorf("cannot unlock report from state %q", c.state)
	}

	c.report = &report
	c.downloadURL = downloadURL
	c.state = StateReportReady
	return nil
}

// Reset discards the session and all accumulated results, tearing down any
// active watch and returning to StateUploading. It is the only backward
// transition, equivalent to a full reload.
func (c *Controller) Reset() {
	c.teardownWatch()
	c.state = StateUploading
	c.sessionID = ""
	c.analysisErr = ""
	c.report = nil
	c.downloadURL = ""
}

func (c *Controller) teardownWatch() {
	if c.watch != nil {
		c.watch.Stop()
		c.watch = nil
	}
}
