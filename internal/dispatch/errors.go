package dispatch

import "errors"

// ErrMalformedCommand is returned when a bus payload cannot be decoded.
var ErrMalformedCommand = errors.New("dispatch: malformed command")
