package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-status-exporter/internal/config"
	"github.com/spec-kit/ticket-status-exporter/internal/events"
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
)

// NotificationService reacts to run events: logging, metrics and the optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
	httpClient *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketFetched, n.handleTicketFetched)
	n.dispatcher.Subscribe(events.EventTicketFailed, n.handleTicketFailed)
	n.dispatcher.Subscribe(events.EventQueueDrained, n.handleQueueDrained)
	n.dispatcher.Subscribe(events.EventExportCompleted, n.handleExportCompleted)
}

func (n *NotificationService) handleTicketFetched(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TicketFetchedPayload)
	n.metrics.RecordFetch("", payload.Duration)
	n.logger.Debug("TicketFetched",
		zap.String("run_id", event.RunID),
		zap.String("ticket_id", event.TicketID),
		zap.String("status", payload.Status))
	return nil
}

func (n *NotificationService) handleTicketFailed(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TicketFailedPayload)
	n.metrics.RecordFetch(payload.Reason, payload.Duration)
	n.logger.Debug("TicketFailed",
		zap.String("run_id", event.RunID),
		zap.String("ticket_id", event.TicketID),
		zap.String("reason", payload.Reason))
	return nil
}

func (n *NotificationService) handleQueueDrained(ctx context.Context, event events.Event) error {
	n.logger.Info("QueueDrained", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleExportCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ExportCompleted", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered", zap.String("url", url), zap.String("event_type", string(event.Type)))
	return nil
}
