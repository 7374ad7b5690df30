package core

import (
	"fmt"
	"time"
)

// TransportFailureKind classifies failures below the HTTP layer.
type TransportFailureKind string

const (
	FailureTimeout         TransportFailureKind = "timeout"
	FailureDNS             TransportFailureKind = "dns"
	FailureConnectionReset TransportFailureKind = "connection-reset"
	FailureConnection      TransportFailureKind = "connection"
)

// Outcome is one of Success, TransportFailure or HTTPFailure.
type Outcome interface {
	outcome()
}

type Success struct {
	Status int
	Body   []byte
	// ContentType is kept for binary responses such as synthesized audio.
	ContentType string
}

type TransportFailure struct {
	Kind  TransportFailureKind
	Cause error
}

type HTTPFailure struct {
	Status int
	Body   []byte
}

func (Success) outcome()          {}
func (TransportFailure) outcome() {}
func (HTTPFailure) outcome()      {}

// Attempt records one transport invocation.
type Attempt struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Outcome   Outcome
}

func (a Attempt) Succeeded() bool {
	_, ok := a.Outcome.(Success)
	return ok
}

// Err converts a failed attempt into the error taxonomy. It returns nil for
// a successful attempt.
func (a Attempt) Err() error {
	switch o := a.Outcome.(type) {
	case Success:
		return nil
	case TransportFailure:
		return NewTransportError(o.Kind, o.Cause)
	case HTTPFailure:
		return NewHTTPError(o.Status, o.Body)
	default:
		return fmt.Errorf("attempt %d: no outcome recorded", a.Number)
	}
}
