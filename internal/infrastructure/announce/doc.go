// Package announce advertises the bridge's web interface over mDNS so it
// can be reached as {hostname}.local without knowing its address.
package announce
