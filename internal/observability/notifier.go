package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Notifier announces analysis outcomes to an external channel.
type Notifier interface {
	AnalysisCompleted(sessionID, fileName, grade string) error
	AnalysisFailed(sessionID, fileName, reason string) error
}

// webhookNotifier posts outcome messages to a generic JSON webhook.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts to the given webhook URL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type webhookMessage struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
}

// AnalysisCompleted posts a completion message.
func (n *webhookNotifier) AnalysisCompleted(sessionID, fileName, grade string) error {
	text := fmt.Sprintf("Contract analysis complete: %s graded %s", fileName, grade)
	return n.post(webhookMessage{Text: text, SessionID: sessionID, Event: EventAnalysisCompleted})
}

// AnalysisFailed posts a failure message.
func (n *webhookNotifier) AnalysisFailed(sessionID, fileName, reason string) error {
	text := fmt.Sprintf("Contract analysis failed: %s (%s)", fileName, reason)
	return n.post(webhookMessage{Text: text, SessionID: sessionID, Event: EventAnalysisFailed})
}

func (n *webhookNotifier) post(msg webhookMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
