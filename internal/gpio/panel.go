package gpio

import (
	"errors"
	"fmt"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

// Handlers receives button events. Both run on a gpiocdev goroutine and
// must not block.
type Handlers struct {
	Press    func()
	LongHold func()
}

// Panel is the front panel: one push button on a pull-up line, wired
// active low, and two indicator LEDs.
type Panel struct {
	mu      sync.Mutex
	chip    *gpiod.Chip
	lines   []*gpiod.Line
	tracker *pressTracker
	bus     *LED
	web     *LED
}

// Open claims the configured lines. The LEDs start dark.
func Open(cfg config.GPIOConfig, h Handlers) (*Panel, error) {
	chip, err := gpiod.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrChipUnavailable, cfg.Chip, err)
	}

	p := &Panel{
		chip:    chip,
		tracker: newPressTracker(h.Press, h.LongHold),
	}

	busLine, err := p.requestOutput(cfg.BusLEDLine)
	if err != nil {
		return nil, p.abort(err)
	}
	p.bus = newLED(busLine)

	webLine, err := p.requestOutput(cfg.WebLEDLine)
	if err != nil {
		return nil, p.abort(err)
	}
	p.web = newLED(webLine)

	button, err := chip.RequestLine(cfg.ButtonLine,
		gpiod.AsInput,
		gpiod.WithPullUp,
		gpiod.WithBothEdges,
		gpiod.WithDebounce(Debounce),
		gpiod.WithEventHandler(p.handleEvent),
	)
	if err != nil {
		return nil, p.abort(fmt.Errorf("%w: button line %d: %w", ErrLineRequest, cfg.ButtonLine, err))
	}
	p.lines = append(p.lines, button)

	return p, nil
}

// abort releases whatever Open claimed so far and returns err together with
// any failure to release it.
func (p *Panel) abort(err error) error {
	return errors.Join(err, p.Close())
}

func (p *Panel) requestOutput(offset int) (*gpiod.Line, error) {
	line, err := p.chip.RequestLine(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("%w: output line %d: %w", ErrLineRequest, offset, err)
	}
	p.lines = append(p.lines, line)
	return line, nil
}

// handleEvent maps a falling edge to a press; the line idles high.
func (p *Panel) handleEvent(evt gpiod.LineEvent) {
	p.tracker.edge(isPressedFromEdge(evt.Type))
}

func isPressedFromEdge(t gpiod.LineEventType) bool {
	return t == gpiod.LineEventFallingEdge
}

// BusLED returns the bus activity indicator. It also shows device activity.
func (p *Panel) BusLED() Indicator { return p.bus }

// WebLED returns the web activity indicator.
func (p *Panel) WebLED() Indicator { return p.web }

// Close releases every line and the chip.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.stop()
	for _, led := range []*LED{p.bus, p.web} {
		if led != nil {
			led.stop()
		}
	}

	var errs []error
	for _, line := range p.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	p.lines = nil

	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		p.chip = nil
	}

	return errors.Join(errs...)
}
