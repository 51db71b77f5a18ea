package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-status-exporter/internal/config"
	"github.com/spec-kit/ticket-status-exporter/internal/events"
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
)

func TestNotificationService_WebhookOnExportCompleted(t *testing.T) {
	var received events.Event
	var raw map[string]any
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		received.Type = events.EventType(raw["type"].(string))
		received.RunID = raw["run_id"].(string)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), observability.NewMetrics(), config.NotificationConfig{WebhookURL: hook.URL}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventExportCompleted,
		RunID:   "run-7",
		Payload: events.RunSummaryPayload{Requested: 3, Fetched: 2, Failed: 1, StatusCounts: map[string]int{"open": 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, events.EventExportCompleted, received.Type)
	assert.Equal(t, "run-7", received.RunID)
	payload := raw["payload"].(map[string]any)
	assert.Equal(t, float64(2), payload["fetched"])
}

func TestNotificationService_WebhookRejected(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer hook.Close()

	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), nil, config.NotificationConfig{WebhookURL: hook.URL}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventExportCompleted})
	assert.ErrorContains(t, err, "HTTP 503")
}

func TestNotificationService_NoWebhookConfigured(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), nil, config.NotificationConfig{}).RegisterHandlers()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventExportCompleted}))
}
