package device

import (
	"fmt"
	"strings"
	"time"
)

// PowerState is the projector power state as last reported by the device.
//
// Unknown is both the initial value and the result of any inconclusive
// read. It is never persisted as configuration, only observed.
type PowerState string

// Power states. The string values are the wire form used in status payloads.
const (
	PowerOn      PowerState = "on"
	PowerOff     PowerState = "off"
	PowerUnknown PowerState = "unknown"
)

// ParsePowerState converts "on"/"off" (any case) into a PowerState.
// Unknown is not accepted as a target.
func ParsePowerState(s string) (PowerState, error) {
	switch PowerState(strings.ToLower(strings.TrimSpace(s))) {
	case PowerOn:
		return PowerOn, nil
	case PowerOff:
		return PowerOff, nil
	default:
		return PowerUnknown, fmt.Errorf("%w: %q", ErrInvalidPowerState, s)
	}
}

// Toggled returns the state a toggle request should aim for.
// Unknown resolves to On so the device ends up in a known commanded state.
func (p PowerState) Toggled() PowerState {
	if p == PowerOn {
		return PowerOff
	}
	return PowerOn
}

// Model identifies the wire protocol of the attached projector.
// It is chosen once at startup and never changes while running.
type Model string

// Supported models.
const (
	ModelNone      Model = "none"
	ModelSimulated Model = "simulated"
	ModelBenQ      Model = "benq"
	ModelCanon     Model = "canon"
)

// AllModels returns all valid device models.
func AllModels() []Model {
	return []Model{ModelNone, ModelSimulated, ModelBenQ, ModelCanon}
}

// ParseModel maps a configuration value to a Model. An empty value means
// no device has been configured yet.
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModelNone:
		return ModelNone, nil
	case ModelSimulated, ModelBenQ, ModelCanon:
		return m, nil
	default:
		return ModelNone, fmt.Errorf("%w: %q (want one of %v)", ErrInvalidModel, s, AllModels())
	}
}

// UsesSerial reports whether the model talks to real hardware.
func (m Model) UsesSerial() bool {
	return m == ModelBenQ || m == ModelCanon
}

// Label renders the human-readable model description used in status
// payloads and the API, e.g. "Canon (19200 Baud)".
func (m Model) Label(baud int) string {
	switch m {
	case ModelCanon:
		return fmt.Sprintf("Canon (%d Baud)", baud)
	case ModelBenQ:
		return fmt.Sprintf("Benq (%d Baud)", baud)
	case ModelSimulated:
		return "Simulated"
	default:
		return "None"
	}
}

// Trigger records why a status publication was sent. Informational only.
type Trigger string

// Status triggers. The string values are the wire form.
const (
	TriggerPeriodic Trigger = "periodic"
	TriggerPoll     Trigger = "poll"
	TriggerCommand  Trigger = "cmd"
	TriggerButton   Trigger = "button"
)

// Change describes a power state transition observed by a poll.
type Change struct {
	Previous PowerState `json:"previous"`
	Current  PowerState `json:"current"`
	At       time.Time  `json:"at"`
}
