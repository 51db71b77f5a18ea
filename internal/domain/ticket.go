package domain

import "time"

// TicketRecord is one ticket as returned by the remote ticket API.
type TicketRecord struct {
	ID     string
	Status string
	// Fields holds the decoded JSON object unchanged.
	Fields map[string]any
}

// StatusCount is a single row of the status summary.
type StatusCount struct {
	Status string
	Count  int
}

// Snapshot is the aggregated result of one export run.
type Snapshot struct {
	RunID        string
	Tickets      []TicketRecord
	StatusCounts []StatusCount
	Requested    int
	Failed       int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Fetched returns the number of tickets successfully fetched.
func (s Snapshot) Fetched() int {
	return len(s.Tickets)
}
