package aggregate

import (
	"sync"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

// Aggregator accumulates fetched tickets and per-status counts.
// Status keys keep first-seen order.
type Aggregator struct {
	mu        sync.RWMutex
	tickets   []domain.TicketRecord
	counts    map[string]int
	order     []string
	failed    int
	requested int
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{counts: make(map[string]int)}
}

// SetRequested records how many tickets the run intends to fetch.
func (a *Aggregator) SetRequested(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requested = n
}

// Add appends a fetched ticket and increments its status count.
func (a *Aggregator) Add(record domain.TicketRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tickets = append(a.tickets, record)
	if _, ok := a.counts[record.Status]; !ok {
		a.order = append(a.order, record.Status)
	}
	a.counts[record.Status]++
}

// MarkFailed counts a ticket that could not be fetched.
func (a *Aggregator) MarkFailed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed++
}

// Progress reports requested, fetched and failed totals.
func (a *Aggregator) Progress() (requested, fetched, failed int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.requested, len(a.tickets), a.failed
}

// Tickets returns a copy of the fetched tickets in completion order.
func (a *Aggregator) Tickets() []domain.TicketRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.TicketRecord, len(a.tickets))
	copy(out, a.tickets)
	return out
}

// StatusCounts returns the status tally in first-seen order.
func (a *Aggregator) StatusCounts() []domain.StatusCount {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.StatusCount, 0, len(a.order))
	for _, status := range a.order {
		out = append(out, domain.StatusCount{Status: status, Count: a.counts[status]})
	}
	return out
}

// Snapshot copies the current state into a domain.Snapshot.
func (a *Aggregator) Snapshot(runID string) domain.Snapshot {
	requested, _, failed := a.Progress()
	return domain.Snapshot{
		RunID:        runID,
		Tickets:      a.Tickets(),
		StatusCounts: a.StatusCounts(),
		Requested:    requested,
		Failed:       failed,
	}
}
