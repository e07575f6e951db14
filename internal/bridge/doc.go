// Package bridge runs the single control loop of the beamer bridge.
//
// One goroutine owns the protocol adapter, the reconciler, the dispatcher
// and the bus session. It steps the reconciler and the session on a short
// ticker and executes intents queued by the HTTP API and the front
// button. Bus commands arrive through the session, which drains them on
// the same goroutine, so the adapter is never used by two callers at once.
package bridge
