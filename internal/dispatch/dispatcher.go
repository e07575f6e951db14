package dispatch

import (
	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/protocol"
)

// Powerer is the write half of a protocol adapter.
type Powerer interface {
	SetPower(on bool) error
}

// StateReader exposes the reconciler's current snapshot.
type StateReader interface {
	State() device.PowerState
}

// Publisher sends a status publication with the given trigger.
type Publisher interface {
	Publish(trigger device.Trigger)
}

// Logger is the logging subset the dispatcher uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Dispatcher turns requests from the web API, the bus and the front
// button into power commands.
//
// The sources differ only in what they publish afterwards: web requests
// publish nothing, bus commands publish when they ask for status, and the
// button always publishes. None of them touch the reconciled state.
//
// Thread Safety:
//   - Not safe for concurrent use. The bridge loop is the only caller.
type Dispatcher struct {
	adapter   Powerer
	state     StateReader
	publisher Publisher
	logger    Logger

	onFactoryReset func()
}

// New creates a dispatcher. publisher may be nil when no bus is configured.
func New(adapter Powerer, state StateReader, publisher Publisher, logger Logger) *Dispatcher {
	return &Dispatcher{
		adapter:   adapter,
		state:     state,
		publisher: publisher,
		logger:    logger,
	}
}

// OnFactoryReset registers the hook called on a long button hold.
func (d *Dispatcher) OnFactoryReset(fn func()) {
	d.onFactoryReset = fn
}

// Web handles a request from the HTTP API.
func (d *Dispatcher) Web(on bool) error {
	return d.request(on, "web")
}

// Bus handles a decoded bus command.
func (d *Dispatcher) Bus(cmd Command) {
	if cmd.Power != nil {
		_ = d.request(*cmd.Power, "bus") //nolint:errcheck // Logged in request
	}

	if cmd.Blank != nil {
		if err := d.blank(*cmd.Blank); err != nil {
			d.logger.Warn("blank command failed", "blank", *cmd.Blank, "error", err)
		}
	}

	if cmd.Status {
		d.publish(device.TriggerCommand)
	}
}

// Button toggles the projector from the current snapshot and always
// publishes. Unknown toggles to On. It returns the state it asked for.
func (d *Dispatcher) Button() device.PowerState {
	target := d.state.State().Toggled()
	_ = d.request(target == device.PowerOn, "button") //nolint:errcheck // Logged in request
	d.publish(device.TriggerButton)
	return target
}

// LongHold reports a factory reset request to the host.
func (d *Dispatcher) LongHold() {
	d.logger.Warn("factory reset requested from button")
	if d.onFactoryReset != nil {
		d.onFactoryReset()
	}
}

func (d *Dispatcher) request(on bool, source string) error {
	d.logger.Info("power request", "source", source, "on", on)
	if err := d.adapter.SetPower(on); err != nil {
		d.logger.Warn("power request not sent", "source", source, "on", on, "error", err)
		return err
	}
	return nil
}

func (d *Dispatcher) blank(on bool) error {
	b, ok := d.adapter.(protocol.Blanker)
	if !ok {
		return protocol.ErrUnsupported
	}
	return b.SetBlank(on)
}

func (d *Dispatcher) publish(trigger device.Trigger) {
	if d.publisher != nil {
		d.publisher.Publish(trigger)
	}
}
