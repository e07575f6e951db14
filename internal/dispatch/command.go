package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// Command is a decoded bus command. Keys that were absent stay nil/false.
type Command struct {
	// Power is set by either "poweron": bool or "pwrstate": "on"|"off".
	Power *bool

	// Status is true when the payload carried a "status" key of any value.
	Status bool

	// Blank is set by "blank": bool.
	Blank *bool
}

// Empty reports whether the command asks for nothing.
func (c Command) Empty() bool {
	return c.Power == nil && !c.Status && c.Blank == nil
}

// ParseCommand decodes a JSON command payload. Unknown keys are ignored.
// A payload that is not a JSON object, or whose known keys have the wrong
// type, is an error; the caller logs and drops it.
func ParseCommand(payload []byte) (Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrMalformedCommand, err)
	}

	var cmd Command

	if raw, ok := fields["poweron"]; ok {
		var on bool
		if err := json.Unmarshal(raw, &on); err != nil {
			return Command{}, fmt.Errorf("%w: poweron must be a boolean", ErrMalformedCommand)
		}
		cmd.Power = &on
	}

	if raw, ok := fields["pwrstate"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Command{}, fmt.Errorf("%w: pwrstate must be a string", ErrMalformedCommand)
		}
		state, err := device.ParsePowerState(s)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrMalformedCommand, err)
		}
		on := state == device.PowerOn
		cmd.Power = &on
	}

	if _, ok := fields["status"]; ok {
		cmd.Status = true
	}

	if raw, ok := fields["blank"]; ok {
		var on bool
		if err := json.Unmarshal(raw, &on); err != nil {
			return Command{}, fmt.Errorf("%w: blank must be a boolean", ErrMalformedCommand)
		}
		cmd.Blank = &on
	}

	return cmd, nil
}

// String renders the command for log lines.
func (c Command) String() string {
	var parts []string
	if c.Power != nil {
		parts = append(parts, fmt.Sprintf("power=%v", *c.Power))
	}
	if c.Blank != nil {
		parts = append(parts, fmt.Sprintf("blank=%v", *c.Blank))
	}
	if c.Status {
		parts = append(parts, "status")
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ",")
}
