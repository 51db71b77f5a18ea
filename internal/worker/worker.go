package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-status-exporter/internal/config"
	"github.com/spec-kit/ticket-status-exporter/internal/events"
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
	"github.com/spec-kit/ticket-status-exporter/internal/service"
)

// StartNotificationWorker subscribes run notifications on dispatcher.
// Handlers run synchronously on the publishing goroutine.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	notifications := service.NewNotificationService(dispatcher, logger, metrics, cfg)
	notifications.RegisterHandlers()
	return notifications
}

// ProgressSource exposes the state of a running export.
type ProgressSource interface {
	Progress() service.Progress
}

// StartProgressReporter logs run progress every interval until ctx ends or
// the run drains. The returned channel closes when the reporter stops.
func StartProgressReporter(ctx context.Context, source ProgressSource, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if source == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p := source.Progress()
				logger.Info("progress",
					zap.Int("requested", p.Requested),
					zap.Int("fetched", p.Fetched),
					zap.Int("failed", p.Failed),
					zap.Int("remaining", p.Requested-p.Fetched-p.Failed))
				if p.Drained {
					return
				}
			}
		}
	}()
	return done
}
