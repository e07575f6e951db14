package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidModel) {
//	    // fall back to no device
//	}
var (
	// ErrInvalidModel is returned when a model value is not recognised.
	ErrInvalidModel = errors.New("device: invalid model")

	// ErrInvalidPowerState is returned when a requested target is not on or off.
	ErrInvalidPowerState = errors.New("device: invalid power state")

	// ErrInvalidHistory is returned when a history record cannot be stored.
	ErrInvalidHistory = errors.New("device: invalid history entry")
)
