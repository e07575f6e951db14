package influxdb

import (
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
)

// Measurement names written by Telemetry.
const (
	MeasurementPoll       = "projector_poll"
	MeasurementTransition = "projector_transition"
)

// PointWriter is the write half of Client.
type PointWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
}

// Telemetry records poll results and power transitions for one bridge.
// It plugs into the reconciler both as a poll recorder and as a listener.
type Telemetry struct {
	writer PointWriter
	tags   map[string]string
}

// NewTelemetry tags every point with the bridge host name and model.
func NewTelemetry(writer PointWriter, hostname string, model device.Model) *Telemetry {
	return &Telemetry{
		writer: writer,
		tags: map[string]string{
			"host":  hostname,
			"model": string(model),
		},
	}
}

// RecordPoll writes one poll result with its query latency.
func (t *Telemetry) RecordPoll(state device.PowerState, latency time.Duration, at time.Time) {
	t.writer.WritePointWithTime(MeasurementPoll, t.tags, map[string]interface{}{
		"state":      string(state),
		"on":         stateValue(state),
		"latency_ms": float64(latency) / float64(time.Millisecond),
	}, at)
}

// PowerStateChanged writes a transition.
func (t *Telemetry) PowerStateChanged(change device.Change) {
	t.writer.WritePointWithTime(MeasurementTransition, t.tags, map[string]interface{}{
		"previous": string(change.Previous),
		"current":  string(change.Current),
		"on":       stateValue(change.Current),
	}, change.At)
}

// stateValue maps a power state to a graphable number: 1 on, 0 off,
// -1 unknown.
func stateValue(state device.PowerState) int {
	switch state {
	case device.PowerOn:
		return 1
	case device.PowerOff:
		return 0
	default:
		return -1
	}
}
