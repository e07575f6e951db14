package settings

import "errors"

var (
	// ErrNotFound is returned by Load when nothing has been saved.
	ErrNotFound = errors.New("settings: no stored overrides")

	// ErrVersionMismatch is returned by Load when the stored record was
	// written by a build with a different schema version. The record is
	// not used.
	ErrVersionMismatch = errors.New("settings: schema version mismatch")

	// ErrInvalid is returned by Save for values the bridge cannot start with.
	ErrInvalid = errors.New("settings: invalid value")
)
