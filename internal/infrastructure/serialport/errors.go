package serialport

import "errors"

// Domain-specific errors for serial link operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrOpenFailed is returned when the serial device cannot be opened.
	ErrOpenFailed = errors.New("serial: open failed")

	// ErrClosed is returned when using a port after Close.
	ErrClosed = errors.New("serial: port closed")

	// ErrWriteFailed is returned when a frame could not be written completely.
	ErrWriteFailed = errors.New("serial: write failed")

	// ErrReadFailed is returned when the driver reports a read error.
	ErrReadFailed = errors.New("serial: read failed")
)
