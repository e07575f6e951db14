package protocol

import (
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// Fixed timing windows. They are part of the adapter contract: callers
// must budget for them because each call blocks for that long.
const (
	// QueryWindow is how long a query collects reply bytes.
	QueryWindow = 100 * time.Millisecond

	// SetSettleWindow is how long the binary protocol drains after a set.
	SetSettleWindow = 500 * time.Millisecond
)

// Adapter translates power intents to and from one vendor's wire format.
//
// Query blocks for at most QueryWindow and never fails: any short, garbled
// or absent reply yields device.PowerUnknown. SetPower is fire-and-forget;
// the returned error only reports that the command could not be issued and
// is never retried here. The next poll reveals what actually happened.
//
// Adapters are not safe for concurrent use. The bridge loop owns the only
// reference.
type Adapter interface {
	Query() device.PowerState
	SetPower(on bool) error
	Model() device.Model
}

// Blanker is implemented by adapters that can blank the picture without
// switching the lamp off.
type Blanker interface {
	SetBlank(on bool) error
}

// Link is the byte channel an adapter talks through.
// *serialport.Port satisfies it.
type Link interface {
	Write(frame []byte) error
	Collect(window time.Duration, max int) ([]byte, error)
	Discard() error
}

// Logger is the logging subset adapters use.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options carries the optional collaborators shared by every adapter.
type Options struct {
	Logger Logger

	// OnActivity is called when the simulated device is switched on, so the
	// host can flash the device-activity indicator.
	OnActivity func()
}

// New selects the adapter for model exactly once at startup.
//
// A serial model with a nil link degrades to an adapter that reports
// Unknown and refuses to send, so a missing cable never stops the bridge.
func New(model device.Model, link Link, opts Options) Adapter {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	switch model {
	case device.ModelSimulated:
		return newSimulated(opts)
	case device.ModelBenQ, device.ModelCanon:
		if link == nil {
			return &unlinked{model: model, logger: opts.Logger}
		}
		if model == device.ModelBenQ {
			return newASCII(link, opts)
		}
		return newBinary(link, opts)
	default:
		return &none{logger: opts.Logger}
	}
}

// none is the adapter used before a projector model has been configured.
type none struct {
	logger Logger
}

func (n *none) Query() device.PowerState { return device.PowerUnknown }

func (n *none) SetPower(on bool) error {
	n.logger.Warn("power request skipped, no projector model configured", "on", on)
	return ErrNoDevice
}

func (n *none) Model() device.Model { return device.ModelNone }

// unlinked stands in for a serial adapter whose port failed to open.
type unlinked struct {
	model  device.Model
	logger Logger
}

func (u *unlinked) Query() device.PowerState { return device.PowerUnknown }

func (u *unlinked) SetPower(on bool) error {
	u.logger.Warn("power request skipped, serial link unavailable", "model", u.model, "on", on)
	return ErrLinkUnavailable
}

func (u *unlinked) Model() device.Model { return u.model }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
