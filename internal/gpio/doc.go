// Package gpio drives the bridge's front panel through the Linux GPIO
// character device.
//
// The push button sits on a pull-up line and pulls it low when pressed.
// A press is reported immediately; keeping the button down for LongHold
// reports a long hold, which the bridge treats as a factory reset request.
//
// Two LEDs show activity. Each has a steady level and darkens for at least
// MinFlash when flashed: the bus LED is steady while the broker session is
// up and flashes on bus and device traffic, the web LED flashes on HTTP
// requests. When GPIO is disabled the bridge uses Noop indicators.
package gpio
