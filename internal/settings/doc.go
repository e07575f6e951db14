// Package settings persists operator overrides made through the HTTP API.
//
// The overrides live in a small bbolt file next to the history database.
// Every record carries a schema version; a record from a build with a
// different version is reported as ErrVersionMismatch and the bridge
// starts from its file configuration instead. A long button hold erases
// the record.
package settings
