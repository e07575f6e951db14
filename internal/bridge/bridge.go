package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/dispatch"
	"github.com/foorschtbar/BeamerControl/internal/reconciler"
	"github.com/foorschtbar/BeamerControl/internal/session"
)

// StepInterval is how often the loop services the reconciler and the
// bus session. It only needs to be well below the poll interval.
const StepInterval = 50 * time.Millisecond

// intentBuffer is the number of intents that can wait for the loop.
const intentBuffer = 8

// ErrBusy is returned by Submit when the intent buffer is full.
var ErrBusy = errors.New("bridge: busy, intent dropped")

// IntentKind identifies where an intent came from.
type IntentKind int

const (
	// IntentWebPower is a power request from the HTTP API.
	IntentWebPower IntentKind = iota
	// IntentButton is a short press of the front button.
	IntentButton
	// IntentLongHold is the front button held past the reset threshold.
	IntentLongHold
)

// String returns the intent name for logs.
func (k IntentKind) String() string {
	switch k {
	case IntentWebPower:
		return "web_power"
	case IntentButton:
		return "button"
	case IntentLongHold:
		return "long_hold"
	default:
		return "unknown"
	}
}

// Intent is a request produced outside the loop goroutine.
type Intent struct {
	Kind IntentKind
	// On is the requested power state for IntentWebPower.
	On bool
}

// Logger is the logging subset the bridge uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Bridge is the cooperative control loop. It owns the reconciler, the
// dispatcher and the bus session; nothing else calls into them except
// through Submit.
type Bridge struct {
	reconciler *reconciler.Reconciler
	dispatcher *dispatch.Dispatcher
	session    *session.Session
	logger     Logger

	intents chan Intent
}

// New wires the loop. Bus commands drained by the session go straight to
// the dispatcher on the loop goroutine.
func New(rec *reconciler.Reconciler, disp *dispatch.Dispatcher, sess *session.Session, logger Logger) *Bridge {
	sess.SetCommandHandler(disp.Bus)
	return &Bridge{
		reconciler: rec,
		dispatcher: disp,
		session:    sess,
		logger:     logger,
		intents:    make(chan Intent, intentBuffer),
	}
}

// Submit queues an intent without blocking. Safe from any goroutine.
func (b *Bridge) Submit(in Intent) error {
	select {
	case b.intents <- in:
		return nil
	default:
		return ErrBusy
	}
}

// Step runs one pass of the periodic work.
func (b *Bridge) Step(now time.Time) {
	b.reconciler.Tick(now)
	b.session.Service(now)
}

// Run drives the loop until ctx is cancelled, then closes the session.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(StepInterval)
	defer ticker.Stop()

	b.Step(time.Now())

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bridge loop stopping")
			if err := b.session.Close(); err != nil {
				b.logger.Warn("error closing bus session", "error", err)
			}
			return nil
		case now := <-ticker.C:
			b.Step(now)
		case in := <-b.intents:
			b.handle(in)
		}
	}
}

func (b *Bridge) handle(in Intent) {
	switch in.Kind {
	case IntentWebPower:
		_ = b.dispatcher.Web(in.On) //nolint:errcheck // Logged by the dispatcher
	case IntentButton:
		b.dispatcher.Button()
	case IntentLongHold:
		b.dispatcher.LongHold()
	default:
		b.logger.Warn("ignoring unknown intent", "kind", in.Kind)
	}
}
