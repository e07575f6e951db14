package protocol

import (
	"fmt"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// Canon RS-232 frames.
var (
	binaryQuery    = []byte{0x00, 0xBF, 0x00, 0x00, 0x01, 0x02, 0xC2}
	binaryPowerOn  = []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	binaryPowerOff = []byte{0x02, 0x01, 0x00, 0x00, 0x00, 0x03}
	binaryBlankOn  = []byte{0x02, 0x10, 0x00, 0x00, 0x00, 0x12}
	binaryBlankOff = []byte{0x02, 0x11, 0x00, 0x00, 0x00, 0x13}
)

const (
	// binaryReplyLen is the fixed status reply size; the last byte is the checksum.
	binaryReplyLen = 22

	// binarySuccess is the first byte of a successful reply.
	binarySuccess = 0x20

	// binaryStatusByte holds the power status code.
	binaryStatusByte = 6
)

// binaryStatus maps the status code in byte 6 to a power state.
var binaryStatus = map[byte]device.PowerState{
	0x00: device.PowerOff, // idle
	0x03: device.PowerOn,  // starting
	0x04: device.PowerOn,  // power on
	0x05: device.PowerOn,  // cooling
	0x06: device.PowerOff, // idle, error standby
}

// Binary speaks the Canon checksum protocol.
type Binary struct {
	link   Link
	logger Logger
	window time.Duration
	settle time.Duration
}

func newBinary(link Link, opts Options) *Binary {
	return &Binary{
		link:   link,
		logger: opts.Logger,
		window: QueryWindow,
		settle: SetSettleWindow,
	}
}

// Query requests the status frame and validates it.
func (b *Binary) Query() device.PowerState {
	if err := b.link.Discard(); err != nil {
		b.logger.Debug("discard before query failed", "error", err)
	}
	if err := b.link.Write(binaryQuery); err != nil {
		b.logger.Warn("writing status query failed", "error", err)
		return device.PowerUnknown
	}

	reply, err := b.link.Collect(b.window, binaryReplyLen)
	if err != nil {
		b.logger.Debug("collecting status reply failed", "error", err)
	}

	state, reason := parseBinaryReply(reply)
	if reason != "" {
		b.logger.Debug("inconclusive status reply", "reason", reason, "raw", fmt.Sprintf("% X", reply))
	}
	return state
}

// SetPower sends the on or off frame, then waits out the settle window and
// drops whatever the projector answered.
func (b *Binary) SetPower(on bool) error {
	frame := binaryPowerOff
	if on {
		frame = binaryPowerOn
	}
	return b.send(frame)
}

// SetBlank mutes or restores the picture while the lamp stays on.
func (b *Binary) SetBlank(on bool) error {
	frame := binaryBlankOff
	if on {
		frame = binaryBlankOn
	}
	return b.send(frame)
}

// Model reports device.ModelCanon.
func (b *Binary) Model() device.Model { return device.ModelCanon }

func (b *Binary) send(frame []byte) error {
	if err := b.link.Write(frame); err != nil {
		return err
	}
	if _, err := b.link.Collect(b.settle, 0); err != nil {
		b.logger.Debug("draining after command failed", "error", err)
	}
	if err := b.link.Discard(); err != nil {
		b.logger.Debug("discard after command failed", "error", err)
	}
	return nil
}

// parseBinaryReply validates a status frame. The reason is empty when the
// frame was conclusive.
func parseBinaryReply(reply []byte) (device.PowerState, string) {
	if len(reply) < binaryReplyLen {
		return device.PowerUnknown, fmt.Sprintf("short reply (%d bytes)", len(reply))
	}
	if reply[0] != binarySuccess {
		return device.PowerUnknown, "no success marker"
	}

	var sum byte
	for _, v := range reply[:binaryReplyLen-1] {
		sum += v
	}
	if sum != reply[binaryReplyLen-1] {
		return device.PowerUnknown, fmt.Sprintf("checksum mismatch (want %02X)", sum)
	}

	state, ok := binaryStatus[reply[binaryStatusByte]]
	if !ok {
		return device.PowerUnknown, fmt.Sprintf("unknown status code %02X", reply[binaryStatusByte])
	}
	return state, ""
}
