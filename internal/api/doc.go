// Package api implements the bridge's HTTP API and WebSocket stream.
//
// This package provides:
//   - Status, power, history and settings endpoints under /api/v1
//   - A WebSocket stream of power transitions at /api/v1/ws
//   - HTTP basic auth on every route except /health when admin
//     credentials are configured
//   - Middleware stack (request ID, logging, recovery, activity LED)
//
// # Commands
//
// POST /api/v1/power never talks to the projector itself. It queues an
// intent for the bridge loop and answers 202; the new state shows up in
// /status once the next poll has confirmed it.
//
// # Graceful Degradation
//
// History and settings are optional. Without them the corresponding
// routes answer 503 while status and power keep working.
package api
