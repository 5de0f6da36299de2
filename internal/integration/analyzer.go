// Package integration contains clients for external collaborators, the main
// one being the PBM contract analyzer service's HTTP API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxbench/pbmctl/pkg/models"
	"golang.org/x/time/rate"
)

// genericTransportError is shown when a request fails and the server
// provided no detail.
const genericTransportError = "Something went wrong talking to the analysis service. Please try again."

// APIError is a non-2xx response from the analyzer service. Detail carries
// the server-provided message verbatim when present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return genericTransportError
}

// errorBody is the service's standard error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// AnalyzerAPI is the full request/response contract with the analyzer
// service. The CLI and MCP layers depend on this interface so tests can
// substitute mocks.
type AnalyzerAPI interface {
	Analyze(ctx context.Context, filename string, content io.Reader) (string, error)
	Status(ctx context.Context, sessionID string) (*models.StatusResponse, error)
	SubmitContact(ctx context.Context, sessionID string, contact models.ContactInfo) (*models.ReportResponse, error)
	KnowledgeStatus(ctx context.Context) (*models.KnowledgeStatus, error)
	UpdateKnowledge(ctx context.Context) (*models.KnowledgeUpdateResult, error)
	DownloadReport(ctx context.Context, sessionID string, w io.Writer) (string, error)
	Health(ctx context.Context) (*models.Health, error)
	ExportLeads(ctx context.Context, key string, w io.Writer) error
}

// AnalyzerClient is the HTTP client for the analyzer service.
type AnalyzerClient struct {
	baseURL    string
	httpClient *http.Client
	// limiter paces outbound requests so a misconfigured poll interval can
	// never hammer the service.
	limiter *rate.Limiter
}

// NewAnalyzerClient creates a client for the service at baseURL. The timeout
// is a generous fixed ceiling covering worst-case upload and processing
// latency, distinct from the polling interval.
func NewAnalyzerClient(baseURL string, timeout time.Duration) *AnalyzerClient {
	return &AnalyzerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Analyze uploads the document as multipart form data and returns the
// server-issued session ID.
func (c *AnalyzerClient) Analyze(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("reading upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", &body)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.AnalyzeResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("analyzer returned no session id")
	}
	return out.SessionID, nil
}

// Status fetches the current status of an analysis session.
func (c *AnalyzerClient) Status(ctx context.Context, sessionID string) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.getJSON(ctx, "/api/status/"+sessionID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContact posts the contact record for a completed session and returns
// the unlocked report with its download reference.
func (c *AnalyzerClient) SubmitContact(ctx context.Context, sessionID string, contact models.ContactInfo) (*models.ReportResponse, error) {
	payload, err := json.Marshal(contact)
	if err != nil {
		return nil, fmt.Errorf("marshaling contact info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/report/"+sessionID, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.ReportResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// KnowledgeStatus fetches the knowledge-base snapshot.
func (c *AnalyzerClient) KnowledgeStatus(ctx context.Context) (*models.KnowledgeStatus, error) {
	var out models.KnowledgeStatus
	if err := c.getJSON(ctx, "/api/knowledge/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateKnowledge triggers a knowledge-base refresh from public sources.
func (c *AnalyzerClient) UpdateKnowledge(ctx context.Context) (*models.KnowledgeUpdateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/knowledge/update", nil)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge update request: %w", err)
	}

	var out models.KnowledgeUpdateResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReport streams the generated PDF for a session into w and returns
// the filename suggested by the server's Content-Disposition header, or an
// empty string when none is given.
func (c *AnalyzerClient) DownloadReport(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/download/"+sessionID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return filename, nil
}

// Health fetches the service health summary.
func (c *AnalyzerClient) Health(ctx context.Context) (*models.Health, error) {
	var out models.Health
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportLeads streams the key-protected leads CSV into w.
func (c *AnalyzerClient) ExportLeads(ctx context.Context, key string, w io.Writer) error {
	q := url.Values{"key": {key}}
	resp, err := c.send(ctx, http.MethodGet, "/api/leads/export?"+q.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("saving leads export: %w", err)
	}
	return nil
}

// getJSON issues a GET and decodes a JSON body into out.
func (c *AnalyzerClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

// send issues a request and returns the raw successful response. The caller
// owns the body.
func (c *AnalyzerClient) send(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for request slot: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

// do issues a prepared request, maps non-2xx responses to *APIError, and
// decodes a successful JSON body into out.
func (c *AnalyzerClient) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the service's {detail} envelope when present.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Detail = eb.Detail
	}
	return apiErr
}
