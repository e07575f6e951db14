package protocol

import "errors"

// Domain-specific errors for protocol adapters.
// Inconclusive reads are never errors; they resolve to device.PowerUnknown.
var (
	// ErrNoDevice is returned by SetPower when no projector model is configured.
	ErrNoDevice = errors.New("protocol: no device configured")

	// ErrLinkUnavailable is returned when the serial link was never opened.
	ErrLinkUnavailable = errors.New("protocol: serial link unavailable")

	// ErrUnsupported is returned when a model lacks an optional capability.
	ErrUnsupported = errors.New("protocol: operation not supported by model")
)
