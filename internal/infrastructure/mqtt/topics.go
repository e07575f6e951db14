package mqtt

import "fmt"

// Topics builds the topic names for one bridge.
//
//	topics := mqtt.Topics{Prefix: "beamer", Hostname: "aula"}
//	topics.Status()           // "beamer/aula/status"
//	topics.DeviceCommand()    // "beamer/aula/cmd"
//	topics.BroadcastCommand() // "beamercmd"
type Topics struct {
	Prefix   string
	Hostname string
}

// Status returns the retained per-device status topic. The last will is
// registered on the same topic.
//
// Example: beamer/aula/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", t.Prefix, t.Hostname)
}

// DeviceCommand returns the command topic scoped to this bridge.
//
// Example: beamer/aula/cmd
func (t Topics) DeviceCommand() string {
	return fmt.Sprintf("%s/%s/cmd", t.Prefix, t.Hostname)
}

// BroadcastCommand returns the command topic every bridge on the prefix
// listens to. There is no separator between prefix and "cmd".
//
// Example: beamercmd
func (t Topics) BroadcastCommand() string {
	return t.Prefix + "cmd"
}
