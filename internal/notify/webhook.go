package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/rs/zerolog"
)

// WebhookNotifier posts submission events to the review team's endpoint.
// Delivery is fire-and-forget: a dead endpoint must never block or fail the
// submission that triggered it.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

func NewWebhookNotifier(url string, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// FromEnv builds a notifier from SUBMISSION_WEBHOOK_URL, or nil when unset.
func FromEnv(log zerolog.Logger) *WebhookNotifier {
	url := strings.TrimSpace(os.Getenv("SUBMISSION_WEBHOOK_URL"))
	if url == "" {
		return nil
	}
	return NewWebhookNotifier(url, log)
}

type submissionEvent struct {
	SubmissionID uint   `json:"submission_id"`
	AppID        uint   `json:"app_id"`
	DeveloperID  uint   `json:"developer_id"`
	Version      string `json:"version"`
	Status       string `json:"status"`
	SubmittedAt  string `json:"submitted_at"`
}

func (n *WebhookNotifier) NotifySubmission(sub *models.AppSubmission) {
	if n == nil || n.url == "" || sub == nil {
		return
	}

	event := submissionEvent{
		SubmissionID: sub.ID,
		AppID:        sub.AppID,
		DeveloperID:  sub.DeveloperID,
		Version:      sub.Version,
		Status:       string(sub.Status),
		SubmittedAt:  sub.SubmittedAt.UTC().Format(time.RFC3339),
	}

	go n.deliver(event)
}

func (n *WebhookNotifier) deliver(event submissionEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		n.log.Error().Err(err).Uint("submission_id", event.SubmissionID).Msg("webhook payload marshal failed")
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.log.Warn().Err(err).Uint("submission_id", event.SubmissionID).Msg("submission webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn().
			Int("status", resp.StatusCode).
			Uint("submission_id", event.SubmissionID).
			Msg("submission webhook rejected")
		return
	}
	n.log.Debug().Uint("submission_id", event.SubmissionID).Msg("submission webhook delivered")
}
