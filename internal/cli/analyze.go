package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rxbench/pbmctl/internal/core"
	"github.com/rxbench/pbmctl/internal/observability"
	"github.com/rxbench/pbmctl/pkg/models"
)

// contactFieldOrder fixes the display and focus order of the contact form.
var contactFieldOrder = []struct {
	key   string
	label string
}{
	{"first_name", "First name"},
	{"last_name", "Last name"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"company", "Company"},
}

// analyzeModel drives the full analysis workflow as a bubbletea program:
// upload, poll, contact gate, report. The workflow state itself lives in the
// core.Controller; the model adds the input handling and presentation around
// it.
type analyzeModel struct {
	ctrl     *core.Controller
	filePath string
	fileName string

	width int

	// gen stamps every asynchronous message. Continuations from a
	// torn-down watch or a reset workflow carry a stale generation and are
	// dropped, so an in-flight poll can never mutate a newer instance.
	gen int

	// upload
	uploadErr string

	// analyzing
	percent   int
	statusMsg string

	// contact gate
	fieldValues map[string]string
	fieldErrs   map[string]string
	focus       int // index into contactFieldOrder; len() == submit button
	submitting  bool
	submitErr   string

	// report
	historyID  string
	historyErr string

	quitting bool
}

// Messages carried back into the model by asynchronous commands.
type uploadResultMsg struct {
	gen       int
	sessionID string
	err       error
}

type pollUpdateMsg struct {
	gen    int
	update core.Update
	ok     bool
}

type pollOutcomeMsg struct {
	gen     int
	outcome core.Outcome
	ok      bool
}

type contactResultMsg struct {
	gen  int
	resp *models.ReportResponse
	err  error
}

func newAnalyzeModel(filePath string) analyzeModel {
	return analyzeModel{
		ctrl:        core.NewController(),
		filePath:    filePath,
		fileName:    filepath.Base(filePath),
		fieldValues: make(map[string]string),
		fieldErrs:   make(map[string]string),
	}
}

func (m analyzeModel) Init() tea.Cmd {
	return m.uploadCmd()
}

// uploadCmd submits the document and reports the server-issued session ID.
func (m analyzeModel) uploadCmd() tea.Cmd {
	gen := m.gen
	path := m.filePath
	name := m.fileName
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{gen: gen, err: fmt.Errorf("opening %s: %w", name, err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		sessionID, err := Client.Analyze(ctx, name, f)
		return uploadResultMsg{gen: gen, sessionID: sessionID, err: err}
	}
}

// waitForUpdate relays the next progress observation from the watch.
func waitForUpdate(w *core.Watch, gen int) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-w.Updates()
		return pollUpdateMsg{gen: gen, update: u, ok: ok}
	}
}

// waitForOutcome relays the watch's terminal outcome.
func waitForOutcome(w *core.Watch, gen int) tea.Cmd {
	return func() tea.Msg {
		o, ok := <-w.Outcome()
		return pollOutcomeMsg{gen: gen, outcome: o, ok: ok}
	}
}

// submitContactCmd posts the contact record for the current session.
func (m analyzeModel) submitContactCmd(contact models.ContactInfo) tea.Cmd {
	gen := m.gen
	sessionID := m.ctrl.SessionID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		resp, err := Client.SubmitContact(ctx, sessionID, contact)
		return contactResultMsg{gen: gen, resp: resp, err: err}
	}
}

// watchOptions derives the polling cadence from the loaded config.
func watchOptions() core.WatchOptions {
	if Config == nil {
		return core.DefaultWatchOptions()
	}
	return core.WatchOptions{
		InitialDelay:    Config.Poll.InitialDelay,
		Interval:        Config.Poll.Interval,
		CompletionDelay: Config.Poll.CompletionDelay,
	}
}

func (m analyzeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case uploadResultMsg:
		if msg.gen != m.gen || m.ctrl.State() != core.StateUploading {
			return m, nil
		}
		if msg.err != nil {
			m.uploadErr = msg.err.Error()
			return m, nil
		}
		m.uploadErr = ""
		if err := m.ctrl.StartAnalysis(msg.sessionID, func(sessionID string) *core.Watch {
			return core.StartWatch(Client, sessionID, watchOptions())
		}); err != nil {
			m.uploadErr = err.Error()
			return m, nil
		}
		observability.Record(EventLog, "INFO", observability.EventAnalysisStarted,
			"analysis started", map[string]any{"session_id": msg.sessionID, "file": m.fileName})
		m.statusMsg = "Initializing..."
		m.percent = core.EstimateProgress(m.statusMsg)
		watch := m.ctrl.Watch()
		return m, tea.Batch(waitForUpdate(watch, m.gen), waitForOutcome(watch, m.gen))

	case pollUpdateMsg:
		if msg.gen != m.gen || m.ctrl.State() != core.StateAnalyzing {
			return m, nil
		}
		// A failed outcome keeps the state at analyzing but tears down the
		// watch; an update already in flight must not re-arm on it.
		watch := m.ctrl.Watch()
		if !msg.ok || watch == nil {
			return m, nil
		}
		m.statusMsg = msg.update.Message
		m.percent = msg.update.Percent
		return m, waitForUpdate(watch, m.gen)

	case pollOutcomeMsg:
		if msg.gen != m.gen || m.ctrl.State() != core.StateAnalyzing || !msg.ok {
			return m, nil
		}
		return m.handleOutcome(msg.outcome)

	case contactResultMsg:
		if msg.gen != m.gen || m.ctrl.State() != core.StateContactGate {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.submitErr = msg.err.Error()
			return m, nil
		}
		return m.unlockReport(msg.resp)
	}

	return m, nil
}

func (m analyzeModel) handleOutcome(outcome core.Outcome) (tea.Model, tea.Cmd) {
	sessionID := m.ctrl.SessionID()
	if err := m.ctrl.HandleOutcome(outcome); err != nil {
		m.uploadErr = err.Error()
		return m, nil
	}

	if outcome.Failed {
		observability.Record(EventLog, "ERROR", observability.EventAnalysisFailed,
			"analysis failed", map[string]any{"session_id": sessionID, "reason": outcome.Message})
		if Notifier != nil {
			_ = Notifier.AnalysisFailed(sessionID, m.fileName, outcome.Message)
		}
		return m, nil
	}

	observability.Record(EventLog, "INFO", observability.EventAnalysisCompleted,
		"analysis completed", map[string]any{"session_id": sessionID, "file": m.fileName})
	m.percent = 100
	return m, nil
}

func (m analyzeModel) unlockReport(resp *models.ReportResponse) (tea.Model, tea.Cmd) {
	if err := m.ctrl.UnlockReport(resp.Analysis, resp.DownloadURL); err != nil {
		m.submitErr = err.Error()
		return m, nil
	}

	observability.Record(EventLog, "INFO", observability.EventReportUnlocked,
		"report unlocked", map[string]any{
			"session_id": m.ctrl.SessionID(),
			"grade":      resp.Analysis.OverallGrade,
		})
	if Notifier != nil {
		_ = Notifier.AnalysisCompleted(m.ctrl.SessionID(), m.fileName, resp.Analysis.OverallGrade)
	}

	if History != nil {
		id, err := History.Add(models.HistoryRecord{
			SessionID:   m.ctrl.SessionID(),
			FileName:    m.fileName,
			Grade:       resp.Analysis.OverallGrade,
			DownloadURL: resp.DownloadURL,
			Report:      resp.Analysis,
		})
		if err != nil {
			m.historyErr = err.Error()
		} else {
			m.historyID = id
		}
	}

	return m, nil
}

func (m analyzeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		m.ctrl.Reset()
		return m, tea.Quit
	}

	switch m.ctrl.State() {
	case core.StateUploading:
		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.uploadErr != "" {
				m.uploadErr = ""
				return m, m.uploadCmd()
			}
		}

	case core.StateAnalyzing:
		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			m.ctrl.Reset()
			return m, tea.Quit
		case "r":
			// Restart after a remote job failure: full reset back to upload.
			if m.ctrl.AnalysisError() != "" {
				return m.restart()
			}
		}

	case core.StateContactGate:
		return m.handleContactKey(msg)

	case core.StateReportReady:
		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// restart is the explicit manual restart after a failed analysis,
// equivalent to a full reload: new generation, fresh upload.
func (m analyzeModel) restart() (tea.Model, tea.Cmd) {
	m.ctrl.Reset()
	m.gen++
	m.percent = 0
	m.statusMsg = ""
	m.uploadErr = ""
	m.submitErr = ""
	m.fieldValues = make(map[string]string)
	m.fieldErrs = make(map[string]string)
	m.focus = 0
	return m, m.uploadCmd()
}

func (m analyzeModel) handleContactKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % (len(contactFieldOrder) + 1)
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(contactFieldOrder) + 1) % (len(contactFieldOrder) + 1)
		return m, nil
	case "enter":
		if m.focus < len(contactFieldOrder) {
			m.focus++
			return m, nil
		}
		return m.submitContact()
	case "backspace":
		if m.focus < len(contactFieldOrder) {
			key := contactFieldOrder[m.focus].key
			v := m.fieldValues[key]
			if len(v) > 0 {
				m.fieldValues[key] = v[:len(v)-1]
			}
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes && m.focus < len(contactFieldOrder) {
		key := contactFieldOrder[m.focus].key
		m.fieldValues[key] += string(msg.Runes)
	}
	return m, nil
}

// submitContact validates the form locally; nothing is sent to the server
// until every field passes.
func (m analyzeModel) submitContact() (tea.Model, tea.Cmd) {
	contact := m.contactInfo()
	m.fieldErrs = core.ValidateContact(contact)
	if len(m.fieldErrs) > 0 {
		return m, nil
	}

	m.submitting = true
	m.submitErr = ""
	return m, m.submitContactCmd(contact)
}

func (m analyzeModel) contactInfo() models.ContactInfo {
	return models.ContactInfo{
		FirstName: m.fieldValues["first_name"],
		LastName:  m.fieldValues["last_name"],
		Email:     m.fieldValues["email"],
		Phone:     m.fieldValues["phone"],
		Company:   m.fieldValues["company"],
	}
}

func (m analyzeModel) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render(" PBM Contract Analyzer ")

	var body string
	switch m.ctrl.State() {
	case core.StateUploading:
		body = m.viewUploading()
	case core.StateAnalyzing:
		body = m.viewAnalyzing()
	case core.StateContactGate:
		body = m.viewContactGate()
	case core.StateReportReady:
		body = renderReport(*m.ctrl.Report(), m.ctrl.DownloadURL(), m.historyID, m.historyErr)
	}

	return fmt.Sprintf("%s\n\n%s\n", title, body)
}

func (m analyzeModel) viewUploading() string {
	if m.uploadErr != "" {
		return fmt.Sprintf("  %s\n\n%s",
			errorStyle.Render("Upload failed: "+m.uploadErr),
			helpStyle.Render("r: retry | q: quit"))
	}
	return fmt.Sprintf("  Uploading %s...\n\n%s",
		m.fileName, helpStyle.Render("q: quit"))
}

func (m analyzeModel) viewAnalyzing() string {
	if errMsg := m.ctrl.AnalysisError(); errMsg != "" {
		return fmt.Sprintf("  %s\n\n%s",
			errorStyle.Render(errMsg),
			helpStyle.Render("r: restart | q: quit"))
	}

	bar := renderProgressBar(m.percent, barWidth(m.width))
	return fmt.Sprintf("  Analyzing %s\n\n  %s %3d%%\n  %s\n\n%s",
		m.fileName, bar, m.percent, subtleStyle.Render(m.statusMsg),
		helpStyle.Render("q: quit"))
}

func (m analyzeModel) viewContactGate() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Almost there - who should receive this report?"))
	b.WriteString("\n\n")

	for i, f := range contactFieldOrder {
		cursor := "  "
		style := subtleStyle
		if i == m.focus {
			cursor = "> "
			style = focusStyle
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor,
			style.Render(fmt.Sprintf("%-12s", f.label+":")), m.fieldValues[f.key]))
		if msg, ok := m.fieldErrs[f.key]; ok {
			b.WriteString("    " + errorStyle.Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	submit := "[ View My Report ]"
	if m.focus == len(contactFieldOrder) {
		submit = focusStyle.Render(submit)
	} else {
		submit = subtleStyle.Render(submit)
	}
	b.WriteString("  " + submit + "\n")

	if m.submitting {
		b.WriteString("\n  Submitting...\n")
	}
	if m.submitErr != "" {
		b.WriteString("\n  " + errorStyle.Render(m.submitErr) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab/enter: next field | enter on button: submit | esc: quit"))
	return b.String()
}

func barWidth(width int) int {
	w := width - 12
	if w < 20 {
		w = 20
	}
	if w > 50 {
		w = 50
	}
	return w
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Upload a contract and walk through the full analysis workflow",
	Long: `Upload a PBM contract (PDF or DOCX, up to 50MB) to the analyzer service
and follow the interactive workflow: watch the analysis progress, enter the
contact details that unlock the report, and view the structured result.

The file is validated locally before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := core.CheckUploadFile(info.Name(), info.Size()); err != nil {
			return err
		}

		p := tea.NewProgram(newAnalyzeModel(path), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
