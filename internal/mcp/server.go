// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the pbmctl analysis workflow as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rxbench/pbmctl/internal/core"
	"github.com/rxbench/pbmctl/internal/integration"
	"github.com/rxbench/pbmctl/internal/observability"
	"github.com/rxbench/pbmctl/internal/storage"
	"github.com/rxbench/pbmctl/pkg/models"
)

// Server wraps the analyzer client and local stores and exposes them as MCP
// tools. history and metricsCalc may be nil when those subsystems are
// disabled.
type Server struct {
	server      *gomcp.Server
	client      integration.AnalyzerAPI
	history     storage.HistoryManager
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server with the given service dependencies.
func NewServer(client integration.AnalyzerAPI, history storage.HistoryManager, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		client:      client,
		history:     history,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pbmctl", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type uploadDocumentInput struct {
	Path string `json:"path" jsonschema:"required,path to the contract document (PDF or DOCX, up to 50MB)"`
}

type uploadDocumentOutput struct {
	SessionID string `json:"session_id"`
}

type getStatusInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the analysis session identifier returned by upload_document"`
}

type getStatusOutput struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	Percent       int    `json:"percent"`
}

type fetchReportInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the analysis session identifier"`
	FirstName string `json:"first_name" jsonschema:"required,contact first name"`
	LastName  string `json:"last_name" jsonschema:"required,contact last name"`
	Email     string `json:"email" jsonschema:"required,contact email address"`
	Phone     string `json:"phone" jsonschema:"required,contact phone number"`
	Company   string `json:"company" jsonschema:"required,contact company"`
}

type fetchReportOutput struct {
	DownloadURL string                `json:"download_url"`
	Analysis    models.AnalysisReport `json:"analysis"`
	HistoryID   string                `json:"history_id,omitempty"`
}

type knowledgeStatusInput struct{}

type updateKnowledgeInput struct{}

type updateKnowledgeOutput struct {
	UpdatesFound int `json:"updates_found"`
}

type listHistoryInput struct{}

type listHistoryOutput struct {
	Records []models.HistorySummary `json:"records"`
	Count   int                     `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "upload_document",
		Description: "Upload a PBM contract document for asynchronous analysis. Returns the session ID used to poll status and fetch the report.",
	}, s.handleUploadDocument)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_status",
		Description: "Get the current status of an analysis session, including an estimated progress percentage.",
	}, s.handleGetStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "fetch_report",
		Description: "Submit contact details for a completed analysis and return the structured report with its PDF download reference.",
	}, s.handleFetchReport)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_knowledge_status",
		Description: "Get the analyzer service's knowledge base snapshot: last update time, counts, and recent updates.",
	}, s.handleKnowledgeStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_knowledge",
		Description: "Trigger a knowledge base refresh from public sources. Returns the number of new items found.",
	}, s.handleUpdateKnowledge)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_history",
		Description: "List locally stored analysis reports, newest first.",
	}, s.handleListHistory)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get local usage metrics derived from the event log: analyses run, completions, failures, unlocked reports, grades.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleUploadDocument(ctx context.Context, _ *gomcp.CallToolRequest, input uploadDocumentInput) (*gomcp.CallToolResult, uploadDocumentOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), uploadDocumentOutput{}, nil
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return errorResult(fmt.Sprintf("reading %s: %s", input.Path, err)), uploadDocumentOutput{}, nil
	}
	if err := core.CheckUploadFile(info.Name(), info.Size()); err != nil {
		return errorResult(err.Error()), uploadDocumentOutput{}, nil
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return errorResult(fmt.Sprintf("opening %s: %s", input.Path, err)), uploadDocumentOutput{}, nil
	}
	defer f.Close()

	sessionID, err := s.client.Analyze(ctx, info.Name(), f)
	if err != nil {
		return errorResult(fmt.Sprintf("uploading document: %s", err)), uploadDocumentOutput{}, nil
	}

	return nil, uploadDocumentOutput{SessionID: sessionID}, nil
}

func (s *Server) handleGetStatus(ctx context.Context, _ *gomcp.CallToolRequest, input getStatusInput) (*gomcp.CallToolResult, getStatusOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), getStatusOutput{}, nil
	}

	status, err := s.client.Status(ctx, input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("fetching status for %s: %s", input.SessionID, err)), getStatusOutput{}, nil
	}

	percent := core.EstimateProgress(status.StatusMessage)
	if status.Status == models.StatusComplete {
		percent = 100
	}

	return nil, getStatusOutput{
		Status:        string(status.Status),
		StatusMessage: status.StatusMessage,
		ErrorMessage:  status.ErrorMessage,
		Percent:       percent,
	}, nil
}

func (s *Server) handleFetchReport(ctx context.Context, _ *gomcp.CallToolRequest, input fetchReportInput) (*gomcp.CallToolResult, fetchReportOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), fetchReportOutput{}, nil
	}

	contact := models.ContactInfo{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Company:   input.Company,
	}
	if errs := core.ValidateContact(contact); len(errs) > 0 {
		return errorResult(fmt.Sprintf("invalid contact details: %v", errs)), fetchReportOutput{}, nil
	}

	resp, err := s.client.SubmitContact(ctx, input.SessionID, contact)
	if err != nil {
		return errorResult(fmt.Sprintf("unlocking report for %s: %s", input.SessionID, err)), fetchReportOutput{}, nil
	}

	out := fetchReportOutput{
		DownloadURL: resp.DownloadURL,
		Analysis:    resp.Analysis,
	}

	if s.history != nil {
		id, err := s.history.Add(models.HistoryRecord{
			SessionID:   input.SessionID,
			Grade:       resp.Analysis.OverallGrade,
			DownloadURL: resp.DownloadURL,
			Report:      resp.Analysis,
		})
		if err == nil {
			out.HistoryID = id
		}
	}

	return nil, out, nil
}

func (s *Server) handleKnowledgeStatus(ctx context.Context, _ *gomcp.CallToolRequest, _ knowledgeStatusInput) (*gomcp.CallToolResult, models.KnowledgeStatus, error) {
	status, err := s.client.KnowledgeStatus(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("fetching knowledge status: %s", err)), models.KnowledgeStatus{}, nil
	}
	return nil, *status, nil
}

func (s *Server) handleUpdateKnowledge(ctx context.Context, _ *gomcp.CallToolRequest, _ updateKnowledgeInput) (*gomcp.CallToolResult, updateKnowledgeOutput, error) {
	result, err := s.client.UpdateKnowledge(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("triggering knowledge update: %s", err)), updateKnowledgeOutput{}, nil
	}
	return nil, updateKnowledgeOutput{UpdatesFound: result.UpdatesFound}, nil
}

func (s *Server) handleListHistory(_ context.Context, _ *gomcp.CallToolRequest, _ listHistoryInput) (*gomcp.CallToolResult, listHistoryOutput, error) {
	if s.history == nil {
		return errorResult("history store not available (history may be disabled)"), listHistoryOutput{}, nil
	}

	records, err := s.history.List()
	if err != nil {
		return errorResult(fmt.Sprintf("listing history: %s", err)), listHistoryOutput{}, nil
	}

	return nil, listHistoryOutput{Records: records, Count: len(records)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, observability.Metrics, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), observability.Metrics{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), observability.Metrics{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), observability.Metrics{}, nil
	}

	return nil, *metrics, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
