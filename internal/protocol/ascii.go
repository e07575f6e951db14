package protocol

import (
	"fmt"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// BenQ RS-232 commands. Every command is wrapped in carriage returns.
var (
	asciiQuery    = []byte("\r*pow=?#\r")
	asciiPowerOn  = []byte("\r*pow=on#\r")
	asciiPowerOff = []byte("\r*pow=off#\r")
)

const (
	asciiReplyOn  = "*POW=ON#"
	asciiReplyOff = "*POW=OFF#"

	// asciiReplyMax bounds the captured reply; further bytes are dropped.
	asciiReplyMax = 50

	// asciiRawMax bounds what is read off the link, echo and noise included.
	asciiRawMax = 256
)

// ASCII speaks the BenQ line protocol.
type ASCII struct {
	link   Link
	logger Logger
	window time.Duration
}

func newASCII(link Link, opts Options) *ASCII {
	return &ASCII{link: link, logger: opts.Logger, window: QueryWindow}
}

// Query asks for the power state and interprets the reply line.
func (a *ASCII) Query() device.PowerState {
	if err := a.link.Discard(); err != nil {
		a.logger.Debug("discard before query failed", "error", err)
	}
	if err := a.link.Write(asciiQuery); err != nil {
		a.logger.Warn("writing power query failed", "error", err)
		return device.PowerUnknown
	}

	raw, err := a.link.Collect(a.window, asciiRawMax)
	if err != nil {
		a.logger.Debug("collecting power reply failed", "error", err)
	}

	state := parseASCIIReply(raw)
	if state == device.PowerUnknown {
		a.logger.Debug("inconclusive power reply", "raw", fmt.Sprintf("%q", raw))
	}
	return state
}

// SetPower sends the on or off command without waiting for a reply.
func (a *ASCII) SetPower(on bool) error {
	cmd := asciiPowerOff
	if on {
		cmd = asciiPowerOn
	}
	return a.link.Write(cmd)
}

// Model reports device.ModelBenQ.
func (a *ASCII) Model() device.Model { return device.ModelBenQ }

// parseASCIIReply extracts the reply line. A line feed starts capturing,
// carriage returns are dropped, and everything else after the first line
// feed is kept up to asciiReplyMax bytes. Without a line feed the buffer
// stays empty.
func parseASCIIReply(raw []byte) device.PowerState {
	buf := make([]byte, 0, asciiReplyMax)
	capturing := false

	for _, b := range raw {
		switch {
		case b == '\n':
			capturing = true
		case b == '\r':
			// dropped
		case capturing && len(buf) < asciiReplyMax:
			buf = append(buf, b)
		}
	}

	switch string(buf) {
	case asciiReplyOn:
		return device.PowerOn
	case asciiReplyOff:
		return device.PowerOff
	default:
		return device.PowerUnknown
	}
}
