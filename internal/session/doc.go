// Package session manages the bridge's MQTT session.
//
// The session is either Disconnected or Connected. While disconnected it
// tries to connect on each Service call, but after a failed attempt it
// waits ReconnectInterval before the next one. Every attempt registers a
// retained last will on the status topic so observers learn of an
// unclean drop.
//
// Once connected the session subscribes to the broadcast and per-device
// command topics, queues inbound messages for the bridge loop, and
// publishes a retained StatusMessage when the reconciler reports a
// transition, when the periodic interval elapses, when a bus command asks
// for status, and when the front button is pressed.
package session
