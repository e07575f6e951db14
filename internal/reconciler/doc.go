// Package reconciler keeps the single authoritative projector power state.
//
// The state is learned only by polling. Commands sent to the projector do
// not touch it; if a command worked, the next poll reports the new state
// and listeners hear about the transition then.
//
//	rec := reconciler.New(adapter)
//	rec.AddListener(session)           // publishes trigger "poll"
//	rec.AddListener(historyRecorder)   // persists the transition
//
//	for now := range ticker.C {
//	    rec.Tick(now) // polls once per PollInterval
//	}
package reconciler
