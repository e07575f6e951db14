// Package protocol contains the projector protocol adapters.
//
// Every adapter offers the same two operations, Query and SetPower, and is
// chosen once at startup by New from the configured model:
//
//   - benq: ASCII line protocol ("\r*pow=?#\r" / "*POW=ON#")
//   - canon: 7-byte query, 22-byte status frame with additive checksum
//   - simulated: in-memory mirror, no link
//   - none: nothing configured, always Unknown
//
// Reads that time out, fail the checksum or carry an unrecognised reply
// resolve to device.PowerUnknown. Nothing is retried inside an adapter;
// the reconciler's next poll is the retry.
//
// Both operations block for a fixed window (QueryWindow, SetSettleWindow)
// regardless of how quickly the projector answers.
package protocol
