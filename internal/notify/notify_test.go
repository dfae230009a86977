package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/models"
)

func TestFromPending(t *testing.T) {
	at := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)
	p := models.PendingNotification{
		ID:      "maturity_bond-1",
		Title:   "Maturity approaching: Acme Bond",
		Body:    "Matures in 3 days",
		Payload: map[string]string{"event_id": "maturity_bond-1"},
	}

	n := FromPending(p, at)
	assert.Equal(t, "Maturity approaching: Acme Bond", n.Title)
	assert.Equal(t, "maturity_bond-1", n.EventID)
	assert.Equal(t, at, n.Timestamp)
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminalNotifier(&buf)

	err := term.Send(context.Background(), Notification{
		Title: "Contribution due: Index Fund",
		Body:  "$500.00 due today",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Contribution due: Index Fund")
	assert.Contains(t, buf.String(), "$500.00 due today")
}

func TestWebhookNotifier(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wh := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: server.URL})
	err := wh.Send(context.Background(), Notification{
		Title:   "Maturity approaching: Acme Bond",
		Body:    "Matures in 3 days",
		EventID: "maturity_bond-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "maturity_bond-1", received["event_id"])
	assert.Equal(t, "Matures in 3 days", received["body"])
}

func TestWebhookNotifierDisabledWithoutURL(t *testing.T) {
	wh := NewWebhookNotifier(config.WebhookConfig{Enabled: true})
	assert.False(t, wh.IsEnabled())
	assert.NoError(t, wh.Send(context.Background(), Notification{Title: "x"}))
}

type failingChannel struct{}

func (f failingChannel) Name() string                                 { return "failing" }
func (f failingChannel) IsEnabled() bool                              { return true }
func (f failingChannel) Send(ctx context.Context, n Notification) error {
	return assert.AnError
}

func TestMultiNotifierCollectsChannelErrors(t *testing.T) {
	var buf bytes.Buffer
	mn := NewMultiNotifier(config.DeliveryConfig{
		Terminal: config.TerminalConfig{Enabled: true},
	}, &buf)
	mn.AddChannel(failingChannel{})

	err := mn.Send(context.Background(), Notification{Title: "Hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	// The healthy channel still delivered.
	assert.Contains(t, buf.String(), "Hello")
}
