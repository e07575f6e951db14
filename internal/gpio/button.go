package gpio

import (
	"sync"
	"time"
)

// LongHold is how long the button must stay pressed to request a factory
// reset.
const LongHold = 10 * time.Second

// Debounce is the settle period requested from the kernel for the button line.
const Debounce = 50 * time.Millisecond

// pressTracker turns button edges into press and long-hold events.
//
// A press fires onPress at once and arms a timer; if the button is still
// down after holdAfter, onLongHold fires. Releasing early disarms it.
type pressTracker struct {
	mu        sync.Mutex
	pressed   bool
	hold      *time.Timer
	holdAfter time.Duration

	onPress    func()
	onLongHold func()
}

func newPressTracker(onPress, onLongHold func()) *pressTracker {
	return &pressTracker{
		holdAfter:  LongHold,
		onPress:    onPress,
		onLongHold: onLongHold,
	}
}

// edge records a level change. Repeated edges at the same level are bounce.
func (p *pressTracker) edge(pressed bool) {
	p.mu.Lock()
	if pressed == p.pressed {
		p.mu.Unlock()
		return
	}
	p.pressed = pressed

	if !pressed {
		if p.hold != nil {
			p.hold.Stop()
			p.hold = nil
		}
		p.mu.Unlock()
		return
	}

	p.hold = time.AfterFunc(p.holdAfter, p.fireLongHold)
	p.mu.Unlock()

	if p.onPress != nil {
		p.onPress()
	}
}

func (p *pressTracker) fireLongHold() {
	p.mu.Lock()
	still := p.pressed
	p.hold = nil
	p.mu.Unlock()

	if still && p.onLongHold != nil {
		p.onLongHold()
	}
}

func (p *pressTracker) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hold != nil {
		p.hold.Stop()
		p.hold = nil
	}
}
