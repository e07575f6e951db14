package reconciler

import (
	"sync"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// PollInterval is the fixed cadence at which the projector is polled.
const PollInterval = time.Second

// Querier is the read half of a protocol adapter.
type Querier interface {
	Query() device.PowerState
}

// Listener is told about every transition a poll observes.
// Listeners run on the polling goroutine and must not block for long.
type Listener interface {
	PowerStateChanged(change device.Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(change device.Change)

// PowerStateChanged calls f(change).
func (f ListenerFunc) PowerStateChanged(change device.Change) { f(change) }

// PollRecorder receives every poll result, changed or not.
type PollRecorder interface {
	RecordPoll(state device.PowerState, latency time.Duration, at time.Time)
}

// Reconciler owns the authoritative power state. The state changes only
// inside Poll, and only to what the projector itself reported, so a
// commanded state stays unconfirmed until the next poll sees it.
//
// Thread Safety:
//   - Tick, Poll and AddListener must be called from one goroutine.
//   - State is safe to call from any goroutine.
type Reconciler struct {
	querier  Querier
	interval time.Duration

	lastPoll  time.Time
	listeners []Listener
	recorder  PollRecorder

	mu      sync.RWMutex
	current device.PowerState
}

// New creates a reconciler starting from device.PowerUnknown.
func New(querier Querier) *Reconciler {
	return &Reconciler{
		querier:  querier,
		interval: PollInterval,
		current:  device.PowerUnknown,
	}
}

// AddListener registers l for transition notifications.
func (r *Reconciler) AddListener(l Listener) {
	r.listeners = append(r.listeners, l)
}

// SetPollRecorder sets a hook that sees every poll result.
func (r *Reconciler) SetPollRecorder(rec PollRecorder) {
	r.recorder = rec
}

// State returns a snapshot of the current power state.
func (r *Reconciler) State() device.PowerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Due reports whether a poll is due at now.
func (r *Reconciler) Due(now time.Time) bool {
	return r.lastPoll.IsZero() || now.Sub(r.lastPoll) >= r.interval
}

// Tick polls if the interval has elapsed since the last poll. It reports
// whether a poll happened.
func (r *Reconciler) Tick(now time.Time) bool {
	if !r.Due(now) {
		return false
	}
	r.Poll(now)
	return true
}

// Poll queries the projector, stores the answer and notifies listeners if
// it differs from the previous state.
func (r *Reconciler) Poll(now time.Time) device.PowerState {
	r.lastPoll = now

	started := time.Now()
	state := r.querier.Query()
	latency := time.Since(started)

	r.mu.Lock()
	previous := r.current
	r.current = state
	r.mu.Unlock()

	if r.recorder != nil {
		r.recorder.RecordPoll(state, latency, now)
	}

	if state != previous {
		change := device.Change{Previous: previous, Current: state, At: now}
		for _, l := range r.listeners {
			l.PowerStateChanged(change)
		}
	}
	return state
}
