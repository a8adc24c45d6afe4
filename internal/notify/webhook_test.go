package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/rs/zerolog"
)

func TestNotifySubmission(t *testing.T) {
	received := make(chan submissionEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event submissionEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		received <- event
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zerolog.Nop())
	n.NotifySubmission(&models.AppSubmission{
		ID:          7,
		AppID:       3,
		DeveloperID: 2,
		Version:     "1.0.0",
		Status:      models.SubmissionSubmitted,
		SubmittedAt: time.Now(),
	})

	select {
	case event := <-received:
		if event.SubmissionID != 7 || event.AppID != 3 || event.Version != "1.0.0" {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.Status != string(models.SubmissionSubmitted) {
			t.Errorf("status = %q", event.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}
}

// A dead endpoint must not panic or block the caller.
func TestNotifySubmissionDeadEndpoint(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1/unreachable", zerolog.Nop())
	done := make(chan struct{})
	go func() {
		n.NotifySubmission(&models.AppSubmission{ID: 1, SubmittedAt: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifySubmission blocked the caller")
	}
}

func TestNilNotifier(t *testing.T) {
	var n *WebhookNotifier
	// Must be a no-op, not a panic.
	n.NotifySubmission(&models.AppSubmission{ID: 1})
}
