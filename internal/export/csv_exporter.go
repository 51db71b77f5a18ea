package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

var (
	ticketsHeader = []string{"Ticket ID", "Status"}
	countsHeader  = []string{"Status", "Count"}
)

// CSVExporter writes the all-tickets and status-count files.
type CSVExporter struct {
	AllTicketsPath   string
	StatusCountsPath string
	logger           *zap.Logger
}

// NewCSVExporter returns an exporter writing to the given paths.
func NewCSVExporter(allTicketsPath, statusCountsPath string, logger *zap.Logger) *CSVExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVExporter{
		AllTicketsPath:   allTicketsPath,
		StatusCountsPath: statusCountsPath,
		logger:           logger,
	}
}

// Export writes both files concurrently. Each file is replaced atomically,
// so a failed write never leaves a truncated export behind.
func (e *CSVExporter) Export(ctx context.Context, snap domain.Snapshot) error {
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := writeFile(e.AllTicketsPath, func(w io.Writer) error {
			return WriteTickets(w, snap.Tickets)
		}); err != nil {
			return fmt.Errorf("export all tickets: %w", err)
		}
		e.logger.Info("all tickets exported",
			zap.String("path", e.AllTicketsPath),
			zap.Int("rows", len(snap.Tickets)))
		return nil
	})

	g.Go(func() error {
		if err := writeFile(e.StatusCountsPath, func(w io.Writer) error {
			return WriteStatusCounts(w, snap.StatusCounts)
		}); err != nil {
			return fmt.Errorf("export status counts: %w", err)
		}
		e.logger.Info("statuses exported",
			zap.String("path", e.StatusCountsPath),
			zap.Int("rows", len(snap.StatusCounts)))
		return nil
	})

	return g.Wait()
}

// WriteTickets writes the header and one Ticket ID,Status row per record.
func WriteTickets(w io.Writer, tickets []domain.TicketRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ticketsHeader); err != nil {
		return err
	}
	for _, t := range tickets {
		if err := cw.Write([]string{t.ID, t.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatusCounts writes the header and one Status,Count row per entry.
func WriteStatusCounts(w io.Writer, counts []domain.StatusCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(countsHeader); err != nil {
		return err
	}
	for _, sc := range counts {
		if err := cw.Write([]string{sc.Status, strconv.Itoa(sc.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}
