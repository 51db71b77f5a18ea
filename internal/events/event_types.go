package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketFetched   EventType = "ticket_fetched"
	EventTicketFailed    EventType = "ticket_failed"
	EventQueueDrained    EventType = "queue_drained"
	EventExportCompleted EventType = "export_completed"
)

// Event represents something that happened during an export run.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketFetchedPayload payload.
type TicketFetchedPayload struct {
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
}

// TicketFailedPayload payload.
type TicketFailedPayload struct {
	Reason     string        `json:"reason"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Error      string        `json:"error"`
	Duration   time.Duration `json:"duration"`
}

// RunSummaryPayload is attached to queue_drained and export_completed.
type RunSummaryPayload struct {
	Requested    int            `json:"requested"`
	Fetched      int            `json:"fetched"`
	Failed       int            `json:"failed"`
	StatusCounts map[string]int `json:"status_counts"`
	Outputs      []string       `json:"outputs,omitempty"`
}
