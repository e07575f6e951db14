// Package influxdb provides InfluxDB connectivity for the beamer bridge.
//
// It wraps the official influxdb-client-go v2 library for batched point
// writes with a bounded retry buffer, and adds Telemetry, which turns
// reconciler polls and transitions into points. The server does not have
// to be up when the bridge starts.
//
// # Measurements
//
//	projector_poll        tags host, model; fields state, on, latency_ms
//	projector_transition  tags host, model; fields previous, current, on
//
// The "on" field is 1 for on, 0 for off and -1 for unknown so dashboards
// can plot it directly.
//
// # Usage
//
//	client, err := influxdb.New(cfg.InfluxDB)
//	if err != nil {
//	    // disabled or misconfigured; telemetry is optional
//	}
//	defer client.Close()
//	if err := client.Ping(ctx); err != nil {
//	    // logged; points are retried once the server appears
//	}
//
//	tel := influxdb.NewTelemetry(client, "aula", device.ModelCanon)
//	rec.SetPollRecorder(tel)
//	rec.AddListener(tel)
//
// # Thread Safety
//
// All Client methods are safe for concurrent use.
package influxdb
