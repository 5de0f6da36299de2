package cli

import (
	"context"
	"io"
	"sync"

	"github.com/rxbench/pbmctl/pkg/models"
)

// mockAnalyzerAPI is a hand-rolled mock of integration.AnalyzerAPI. Each
// func field defaults to a zero-value success when nil.
type mockAnalyzerAPI struct {
	mu sync.Mutex

	analyzeFunc       func(ctx context.Context, filename string, content io.Reader) (string, error)
	statusFunc        func(ctx context.Context, sessionID string) (*models.StatusResponse, error)
	submitContactFunc func(ctx context.Context, sessionID string, contact models.ContactInfo) (*models.ReportResponse, error)

	analyzeCalls       int
	statusCalls        int
	submitContactCalls int
	lastContact        models.ContactInfo
}

func (m *mockAnalyzerAPI) Analyze(ctx context.Context, filename string, content io.Reader) (string, error) {
	m.mu.Lock()
	m.analyzeCalls++
	fn := m.analyzeFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, filename, content)
	}
	return "sess-mock", nil
}

func (m *mockAnalyzerAPI) Status(ctx context.Context, sessionID string) (*models.StatusResponse, error) {
	m.mu.Lock()
	m.statusCalls++
	fn := m.statusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sessionID)
	}
	return &models.StatusResponse{Status: models.StatusProcessing, StatusMessage: "Analyzing"}, nil
}

func (m *mockAnalyzerAPI) SubmitContact(ctx context.Context, sessionID string, contact models.ContactInfo) (*models.ReportResponse, error) {
	m.mu.Lock()
	m.submitContactCalls++
	m.lastContact = contact
	fn := m.submitContactFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sessionID, contact)
	}
	return &models.ReportResponse{Success: true, Analysis: models.AnalysisReport{OverallGrade: "B"}}, nil
}

func (m *mockAnalyzerAPI) KnowledgeStatus(ctx context.Context) (*models.KnowledgeStatus, error) {
	return &models.KnowledgeStatus{LastUpdated: "Never"}, nil
}

func (m *mockAnalyzerAPI) UpdateKnowledge(ctx context.Context) (*models.KnowledgeUpdateResult, error) {
	return &models.KnowledgeUpdateResult{Success: true}, nil
}

func (m *mockAnalyzerAPI) DownloadReport(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	_, err := w.Write([]byte("%PDF"))
	return "PBM_Analysis_Report.pdf", err
}

func (m *mockAnalyzerAPI) Health(ctx context.Context) (*models.Health, error) {
	return &models.Health{Status: "healthy"}, nil
}

func (m *mockAnalyzerAPI) ExportLeads(ctx context.Context, key string, w io.Writer) error {
	_, err := w.Write([]byte("email,company\n"))
	return err
}
