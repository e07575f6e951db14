package influxdb

import "errors"

var (
	// ErrDisabled is returned by New when telemetry is switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrInvalidConfig is returned by New when required settings are missing.
	ErrInvalidConfig = errors.New("influxdb: invalid configuration")

	// ErrUnreachable is returned by Ping when the server cannot be reached
	// or is not ready.
	ErrUnreachable = errors.New("influxdb: server unreachable")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("influxdb: client closed")
)
