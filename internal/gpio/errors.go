package gpio

import "errors"

var (
	// ErrChipUnavailable is returned when the GPIO character device cannot be opened.
	ErrChipUnavailable = errors.New("gpio: chip unavailable")

	// ErrLineRequest is returned when a line cannot be claimed.
	ErrLineRequest = errors.New("gpio: line request failed")
)
