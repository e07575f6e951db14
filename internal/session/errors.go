package session

import "errors"

// Domain-specific errors for the bus session.
var (
	// ErrInboxFull is returned when an inbound message arrives faster than
	// the bridge loop drains it. The message is dropped.
	ErrInboxFull = errors.New("session: inbound queue full")
)
