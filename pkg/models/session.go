package models

// SessionStatus is the lifecycle status of a remote analysis session as
// reported by the analyzer service.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusProcessing SessionStatus = "processing"
	StatusComplete   SessionStatus = "complete"
	StatusError      SessionStatus = "error"
)

// Terminal reports whether the status ends the polling loop.
func (s SessionStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// StatusResponse is the body of GET /api/status/{session_id}.
type StatusResponse struct {
	Status        SessionStatus `json:"status"`
	StatusMessage string        `json:"status_message"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// AnalyzeResponse is the body of POST /api/analyze.
type AnalyzeResponse struct {
	SessionID string `json:"session_id"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status         string `json:"status"`
	SessionsActive int    `json:"sessions_active"`
	LeadsCaptured  int    `json:"leads_captured"`
}
