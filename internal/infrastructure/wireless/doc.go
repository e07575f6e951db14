// Package wireless reads the signal level of the bridge's wireless
// interface from /proc/net/wireless. The level goes into every status
// publication; a wired or unknown interface reports 0.
package wireless
