package wireless

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ProcPath is the kernel's wireless statistics table.
const ProcPath = "/proc/net/wireless"

// Reader reports the signal level of one wireless interface.
type Reader struct {
	path      string
	iface     string
	available bool
}

// New creates a reader for iface. An empty iface yields a reader that
// always reports 0.
func New(iface string) *Reader {
	return &Reader{path: ProcPath, iface: iface, available: iface != ""}
}

// RSSI returns the signal level in dBm, or 0 when it cannot be read.
func (r *Reader) RSSI() int {
	if !r.available {
		return 0
	}
	f, err := os.Open(r.path)
	if err != nil {
		return 0
	}
	defer f.Close()

	dbm, err := parse(f, r.iface)
	if err != nil {
		return 0
	}
	return dbm
}

// parse scans a /proc/net/wireless table for iface and returns its level
// column. The layout is:
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
//	 wlan0: 0000   58.  -52.  -256        0      0      0      0     12        0
func parse(r io.Reader, iface string) (int, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, fmt.Errorf("wireless: short line for %s", iface)
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("wireless: level for %s: %w", iface, err)
		}
		return int(level), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("wireless: reading table: %w", err)
	}
	return 0, fmt.Errorf("wireless: interface %s not found", iface)
}

// Quality converts a dBm level to a 0-100 percentage: -100 dBm or weaker
// is 0, -50 dBm or stronger is 100, linear in between.
func Quality(dbm int) int {
	switch {
	case dbm <= -100:
		return 0
	case dbm >= -50:
		return 100
	default:
		return 2 * (dbm + 100)
	}
}
