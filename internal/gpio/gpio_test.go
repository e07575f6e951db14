package gpio

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	gpiod "github.com/warthog618/go-gpiocdev"
)

type fakeLine struct {
	mu     sync.Mutex
	values []int
}

func (f *fakeLine) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, v)
	return nil
}

func (f *fakeLine) last() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return -1
	}
	return f.values[len(f.values)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLED_FlashRestoresSteadyLevel(t *testing.T) {
	line := &fakeLine{}
	led := newLED(line)
	led.period = 20 * time.Millisecond

	led.Steady(true)
	if line.last() != 1 {
		t.Fatalf("steady on wrote %d, want 1", line.last())
	}

	led.Flash()
	if line.last() != 0 {
		t.Errorf("flash wrote %d, want 0", line.last())
	}

	waitFor(t, func() bool { return line.last() == 1 })
}

func TestLED_SteadyDuringFlashAppliesAfterwards(t *testing.T) {
	line := &fakeLine{}
	led := newLED(line)
	led.period = 20 * time.Millisecond

	led.Flash()
	led.Steady(true)
	if line.last() != 0 {
		t.Errorf("steady change cut the flash short")
	}

	waitFor(t, func() bool { return line.last() == 1 })
}

func TestLED_StopSwitchesOff(t *testing.T) {
	line := &fakeLine{}
	led := newLED(line)
	led.period = time.Hour

	led.Steady(true)
	led.Flash()
	led.stop()

	if line.last() != 0 {
		t.Errorf("stop wrote %d, want 0", line.last())
	}
}

func TestLED_IgnoresCallsAfterStop(t *testing.T) {
	line := &fakeLine{}
	led := newLED(line)
	led.period = 10 * time.Millisecond

	led.stop()
	writes := len(line.values)

	led.Steady(true)
	led.Flash()
	led.stop()
	time.Sleep(3 * led.period)

	line.mu.Lock()
	defer line.mu.Unlock()
	if len(line.values) != writes {
		t.Errorf("line written %d times after stop, want 0", len(line.values)-writes)
	}
	if led.restore != nil {
		t.Error("restore timer armed after stop")
	}
}

func TestPanel_AbortKeepsOpenError(t *testing.T) {
	p := &Panel{tracker: newPressTracker(nil, nil)}
	cause := fmt.Errorf("%w: output line 7: busy", ErrLineRequest)

	err := p.abort(cause)
	if !errors.Is(err, ErrLineRequest) {
		t.Errorf("abort() error = %v, want ErrLineRequest", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() after abort error = %v", err)
	}
}

type events struct {
	mu        sync.Mutex
	presses   int
	longHolds int
}

func (e *events) press()    { e.mu.Lock(); e.presses++; e.mu.Unlock() }
func (e *events) longHold() { e.mu.Lock(); e.longHolds++; e.mu.Unlock() }

func (e *events) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presses, e.longHolds
}

func TestPressTracker_PressFiresOnceIgnoringBounce(t *testing.T) {
	ev := &events{}
	p := newPressTracker(ev.press, ev.longHold)
	p.holdAfter = time.Hour
	defer p.stop()

	p.edge(true)
	p.edge(true)
	p.edge(false)
	p.edge(false)
	p.edge(true)

	if presses, _ := ev.counts(); presses != 2 {
		t.Errorf("presses = %d, want 2", presses)
	}
}

func TestPressTracker_LongHold(t *testing.T) {
	ev := &events{}
	p := newPressTracker(ev.press, ev.longHold)
	p.holdAfter = 20 * time.Millisecond

	p.edge(true)
	waitFor(t, func() bool { _, holds := ev.counts(); return holds == 1 })

	presses, _ := ev.counts()
	if presses != 1 {
		t.Errorf("presses = %d, want 1", presses)
	}
}

func TestPressTracker_ReleaseCancelsLongHold(t *testing.T) {
	ev := &events{}
	p := newPressTracker(ev.press, ev.longHold)
	p.holdAfter = 30 * time.Millisecond

	p.edge(true)
	p.edge(false)
	time.Sleep(80 * time.Millisecond)

	if _, holds := ev.counts(); holds != 0 {
		t.Errorf("long holds = %d after early release, want 0", holds)
	}
}

func TestIsPressedFromEdge(t *testing.T) {
	if !isPressedFromEdge(gpiod.LineEventFallingEdge) {
		t.Error("falling edge should be a press")
	}
	if isPressedFromEdge(gpiod.LineEventRisingEdge) {
		t.Error("rising edge should be a release")
	}
}

func TestNoopIndicator(t *testing.T) {
	var ind Indicator = Noop{}
	ind.Steady(true)
	ind.Flash()
}
