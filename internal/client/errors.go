package client

import (
	"errors"
	"fmt"
)

// Reason classifies why a ticket could not be fetched.
type Reason string

const (
	ReasonNetwork    Reason = "network"
	ReasonNotFound   Reason = "not_found"
	ReasonHTTPStatus Reason = "http_status"
	ReasonMalformed  Reason = "malformed_response"
	ReasonCanceled   Reason = "canceled"
)

// FetchError describes a failed ticket request.
type FetchError struct {
	TicketID   string
	Reason     Reason
	HTTPStatus int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch ticket %s: %s", e.TicketID, e.Reason)
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.HTTPStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason carried by err, or "" for a nil error.
// Errors that are not a *FetchError are reported as network failures.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonNetwork
}
