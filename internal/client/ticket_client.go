package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

// APIKeyHeader carries the ticket API secret.
const APIKeyHeader = "X-API-KEY"

const maxBodyBytes = 4 << 20

// TicketFetcher loads a single ticket from the remote API.
type TicketFetcher interface {
	FetchTicket(ctx context.Context, ticketID string) (*domain.TicketRecord, error)
}

// TicketClient fetches tickets over HTTP.
type TicketClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

// NewTicketClient builds a client. A zero timeout leaves requests unbounded
// except by the caller's context.
func NewTicketClient(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *TicketClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// FetchTicket issues GET {endpoint}{ticketID}. Every failure is logged here and
// returned as a *FetchError; no retries are attempted.
func (c *TicketClient) FetchTicket(ctx context.Context, ticketID string) (*domain.TicketRecord, error) {
	record, err := c.fetch(ctx, ticketID)
	if err != nil {
		c.logger.Error("fetch ticket failed",
			zap.String("ticket_id", ticketID),
			zap.String("reason", string(ReasonOf(err))),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (c *TicketClient) fetch(ctx context.Context, ticketID string) (*domain.TicketRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+ticketID, nil)
	if err != nil {
		return nil, &FetchError{TicketID: ticketID, Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		reason := ReasonNetwork
		if ctx.Err() != nil {
			reason = ReasonCanceled
		}
		return nil, &FetchError{TicketID: ticketID, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		reason := ReasonHTTPStatus
		if resp.StatusCode == http.StatusNotFound {
			reason = ReasonNotFound
		}
		return nil, &FetchError{
			TicketID:   ticketID,
			Reason:     reason,
			HTTPStatus: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	record, err := decodeTicket(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{TicketID: ticketID, Reason: ReasonMalformed, HTTPStatus: resp.StatusCode, Err: err}
	}
	record.ID = ticketID
	return record, nil
}

func decodeTicket(r io.Reader) (*domain.TicketRecord, error) {
	var fields map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, errors.New("body is not a JSON object")
	}
	raw, ok := fields["status"]
	if !ok {
		return nil, errors.New("missing status field")
	}
	status, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("status field is %T, want string", raw)
	}
	return &domain.TicketRecord{Status: status, Fields: fields}, nil
}
