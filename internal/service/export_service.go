package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-status-exporter/internal/aggregate"
	"github.com/spec-kit/ticket-status-exporter/internal/client"
	"github.com/spec-kit/ticket-status-exporter/internal/domain"
	"github.com/spec-kit/ticket-status-exporter/internal/events"
	"github.com/spec-kit/ticket-status-exporter/internal/input"
	"github.com/spec-kit/ticket-status-exporter/internal/queue"
)

// Exporter writes the primary run outputs.
type Exporter interface {
	Export(ctx context.Context, snap domain.Snapshot) error
}

// ExportService runs one fetch, aggregate and export pass over a ticket list.
type ExportService struct {
	runID      string
	inputPath  string
	idColumn   int
	delay      time.Duration
	fetcher    client.TicketFetcher
	exporter   Exporter
	sinks      []SnapshotSink
	dispatcher events.Dispatcher
	logger     *zap.Logger
	agg        *aggregate.Aggregator
	drained    atomic.Bool
	outputs    []string
}

// ExportDependencies bundles collaborators for the export service.
type ExportDependencies struct {
	InputPath    string
	IDColumn     int
	RequestDelay time.Duration
	Fetcher      client.TicketFetcher
	Exporter     Exporter
	Outputs      []string
	Sinks        []SnapshotSink
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// Progress describes how far the current run has come.
type Progress struct {
	RunID        string
	Requested    int
	Fetched      int
	Failed       int
	Drained      bool
	StatusCounts []domain.StatusCount
}

// NewExportService constructs the service with a fresh run id.
func NewExportService(deps ExportDependencies) *ExportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &ExportService{
		runID:      runID,
		inputPath:  deps.InputPath,
		idColumn:   deps.IDColumn,
		delay:      deps.RequestDelay,
		fetcher:    deps.Fetcher,
		exporter:   deps.Exporter,
		sinks:      deps.Sinks,
		dispatcher: deps.Dispatcher,
		logger:     logger.With(zap.String("run_id", runID)),
		agg:        aggregate.New(),
		outputs:    deps.Outputs,
	}
}

// RunID identifies this run in logs, events and sinks.
func (s *ExportService) RunID() string {
	return s.runID
}

// Progress returns a consistent view of the run so far.
func (s *ExportService) Progress() Progress {
	requested, fetched, failed := s.agg.Progress()
	return Progress{
		RunID:        s.runID,
		Requested:    requested,
		Fetched:      fetched,
		Failed:       failed,
		Drained:      s.drained.Load(),
		StatusCounts: s.agg.StatusCounts(),
	}
}

// Run loads the ticket ids, fetches every ticket one at a time and exports
// the results once the queue has drained. A canceled run exports nothing.
func (s *ExportService) Run(ctx context.Context) (*domain.Snapshot, error) {
	startedAt := time.Now().UTC()

	ids, err := input.LoadTicketIDs(s.inputPath, s.idColumn)
	if err != nil {
		return nil, err
	}
	s.agg.SetRequested(len(ids))
	s.logger.Info("fetching all tickets", zap.Int("count", len(ids)), zap.Duration("delay", s.delay))

	q := queue.New(s.processTicket, s.logger)
	for _, id := range ids {
		ticketID := id
		if err := q.Push(queue.Task{TicketID: ticketID, Delay: s.delay}, func(err error) {
			if err != nil {
				s.logger.Error("failed to process ticket", zap.String("ticket_id", ticketID), zap.Error(err))
				return
			}
			s.logger.Info("ticket processed successfully", zap.String("ticket_id", ticketID))
		}); err != nil {
			return nil, fmt.Errorf("enqueue ticket %s: %w", ticketID, err)
		}
	}
	q.Close()
	q.Start(ctx)
	<-q.Drained()
	s.drained.Store(true)

	snap := s.agg.Snapshot(s.runID)
	snap.StartedAt = startedAt
	snap.FinishedAt = time.Now().UTC()
	summary := summaryPayload(snap, nil)
	s.publishEvent(ctx, events.Event{Type: events.EventQueueDrained, Payload: summary})

	if err := ctx.Err(); err != nil {
		s.logger.Warn("run canceled before export", zap.Int("fetched", snap.Fetched()), zap.Error(err))
		return nil, err
	}

	if err := s.exporter.Export(ctx, snap); err != nil {
		return nil, err
	}
	s.saveToSinks(ctx, snap)

	s.publishEvent(ctx, events.Event{Type: events.EventExportCompleted, Payload: summaryPayload(snap, s.outputs)})
	return &snap, nil
}

func (s *ExportService) processTicket(ctx context.Context, task queue.Task) error {
	start := time.Now()
	record, err := s.fetcher.FetchTicket(ctx, task.TicketID)
	elapsed := time.Since(start)

	if err != nil {
		s.agg.MarkFailed()
		payload := events.TicketFailedPayload{
			Reason:   string(client.ReasonOf(err)),
			Error:    err.Error(),
			Duration: elapsed,
		}
		var fe *client.FetchError
		if errors.As(err, &fe) {
			payload.HTTPStatus = fe.HTTPStatus
		}
		s.publishEvent(ctx, events.Event{Type: events.EventTicketFailed, TicketID: task.TicketID, Payload: payload})
		return err
	}
	if record == nil {
		s.agg.MarkFailed()
		return fmt.Errorf("fetch ticket %s: empty result", task.TicketID)
	}

	s.agg.Add(*record)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketFetched,
		TicketID: task.TicketID,
		Payload:  events.TicketFetchedPayload{Status: record.Status, Duration: elapsed},
	})
	return nil
}

func (s *ExportService) saveToSinks(ctx context.Context, snap domain.Snapshot) {
	for _, sink := range s.sinks {
		if err := sink.Save(ctx, snap); err != nil {
			s.logger.Error("snapshot sink failed", zap.String("sink", sink.Name()), zap.Error(err))
			continue
		}
		s.logger.Info("snapshot saved", zap.String("sink", sink.Name()))
	}
}

func (s *ExportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = s.runID
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func summaryPayload(snap domain.Snapshot, outputs []string) events.RunSummaryPayload {
	counts := make(map[string]int, len(snap.StatusCounts))
	for _, sc := range snap.StatusCounts {
		counts[sc.Status] = sc.Count
	}
	return events.RunSummaryPayload{
		Requested:    snap.Requested,
		Fetched:      snap.Fetched(),
		Failed:       snap.Failed,
		StatusCounts: counts,
		Outputs:      outputs,
	}
}
