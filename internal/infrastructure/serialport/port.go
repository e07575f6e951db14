package serialport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// readChunk is the size of a single driver read.
const readChunk = 64

// Config contains the serial link parameters. The line is always 8N1.
type Config struct {
	Device string
	Baud   int
}

// stream is the part of serial.Port the link uses.
type stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Port is a duplex byte channel to the projector. It knows nothing about
// frames or protocols, only about timing windows.
//
// Thread Safety:
//   - Methods are serialised internally, but the bridge only ever has one
//     caller, so the lock is never contended in practice.
type Port struct {
	mu     sync.Mutex
	s      stream
	device string
	closed bool
}

// Open opens the serial device at the configured baud rate, 8N1.
//
// Returns:
//   - *Port: Open link ready for use
//   - error: ErrOpenFailed wrapping the driver error
func Open(cfg Config) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, cfg.Device, err)
	}

	return newPort(p, cfg.Device), nil
}

func newPort(s stream, device string) *Port {
	return &Port{s: s, device: device}
}

// Device returns the device path the port was opened on.
func (p *Port) Device() string {
	return p.device
}

// Write sends the whole frame or fails.
func (p *Port) Write(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	for written := 0; written < len(frame); {
		n, err := p.s.Write(frame[written:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteFailed, written, len(frame))
		}
		written += n
	}
	return nil
}

// Collect reads whatever arrives within window and returns at most max
// bytes. Bytes beyond max are read and dropped so they do not leak into
// the next exchange. An empty result is not an error.
//
// Collect always blocks for roughly the full window.
func (p *Port) Collect(window time.Duration, max int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	out := make([]byte, 0, max)
	buf := make([]byte, readChunk)
	deadline := time.Now().Add(window)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return out, nil
		}
		if err := p.s.SetReadTimeout(remaining); err != nil {
			return out, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}

		n, err := p.s.Read(buf)
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
		if room := max - len(out); room > 0 {
			out = append(out, buf[:min(n, room)]...)
		}
	}
}

// Discard drops any bytes waiting in the input buffer.
func (p *Port) Discard() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if err := p.s.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: reset input: %w", ErrReadFailed, err)
	}
	return nil
}

// Close releases the device. Closing twice is not an error.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.s.Close()
}
