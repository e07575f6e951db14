package gpio

import (
	"sync"
	"time"
)

// MinFlash is the shortest time an indicator stays dark for one flash.
const MinFlash = 500 * time.Millisecond

// Indicator is an activity LED.
type Indicator interface {
	// Steady sets the resting level the LED returns to after a flash.
	Steady(on bool)
	// Flash darkens the LED for at least MinFlash.
	Flash()
}

// valueSetter is the part of *gpiod.Line an LED drives.
type valueSetter interface {
	SetValue(value int) error
}

// LED drives an indicator line. A flash turns the LED off and restores the
// steady level once MinFlash has passed; flashes during that window extend
// it.
type LED struct {
	mu      sync.Mutex
	line    valueSetter
	steady  bool
	dark    bool
	restore *time.Timer
	period  time.Duration

	// stopped is set once the line is released; later calls do nothing.
	stopped bool
}

func newLED(line valueSetter) *LED {
	return &LED{line: line, period: MinFlash}
}

// Steady sets the resting level.
func (l *LED) Steady(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.steady = on
	if !l.dark {
		l.set(on)
	}
}

// Flash darkens the LED.
func (l *LED) Flash() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}

	l.dark = true
	l.set(false)
	if l.restore != nil {
		l.restore.Stop()
	}
	l.restore = time.AfterFunc(l.period, l.endFlash)
}

func (l *LED) endFlash() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.dark = false
	l.set(l.steady)
}

// stop cancels a pending restore and switches the LED off. The LED ignores
// every call after it.
func (l *LED) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	if l.restore != nil {
		l.restore.Stop()
		l.restore = nil
	}
	l.set(false)
	l.stopped = true
}

func (l *LED) set(on bool) {
	v := 0
	if on {
		v = 1
	}
	// An LED that cannot be driven is not worth failing over.
	_ = l.line.SetValue(v) //nolint:errcheck
}

// Noop is the Indicator used when GPIO is disabled.
type Noop struct{}

// Steady does nothing.
func (Noop) Steady(bool) {}

// Flash does nothing.
func (Noop) Flash() {}
