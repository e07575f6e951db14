package device

import (
	"context"
	"time"
)

// StateHistoryEntry is one persisted power transition.
//
// Transitions are kept locally so the API can show what the projector did
// even when the time-series database is unavailable.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Previous is the state before the transition.
	Previous PowerState `json:"previous"`

	// State is the state the poll observed.
	State PowerState `json:"state"`

	// Trigger identifies what caused the record (normally poll).
	Trigger Trigger `json:"trigger"`

	// CreatedAt is the timestamp of the transition (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// StateHistoryRepository stores and retrieves power transition history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordChange persists a transition observed by the reconciler.
	RecordChange(ctx context.Context, change Change, trigger Trigger) error

	// GetHistory returns recent transitions, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	GetHistory(ctx context.Context, limit int) ([]StateHistoryEntry, error)
}
