package protocol

import "github.com/foorschtbar/BeamerControl/internal/device"

// Simulated keeps the power state in memory. It never touches a link and
// never reports Unknown, which makes it useful for demos and tests.
type Simulated struct {
	state      device.PowerState
	onActivity func()
}

func newSimulated(opts Options) *Simulated {
	return &Simulated{state: device.PowerOff, onActivity: opts.OnActivity}
}

// Query returns the mirrored state.
func (s *Simulated) Query() device.PowerState {
	return s.state
}

// SetPower stores the requested state. Switching on signals activity.
func (s *Simulated) SetPower(on bool) error {
	if on {
		s.state = device.PowerOn
		if s.onActivity != nil {
			s.onActivity()
		}
		return nil
	}
	s.state = device.PowerOff
	return nil
}

// Model reports device.ModelSimulated.
func (s *Simulated) Model() device.Model { return device.ModelSimulated }
