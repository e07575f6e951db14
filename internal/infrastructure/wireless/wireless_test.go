package wireless

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const table = `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
  eth1: 0000   12.  -98.  -256        0      0      0      0      0        0
 wlan0: 0000   58.  -52.  -256        0      0      0      0     12        0
`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		iface   string
		want    int
		wantErr bool
	}{
		{"wlan0", "wlan0", -52, false},
		{"other interface", "eth1", -98, false},
		{"missing", "wlan1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(strings.NewReader(table), tt.iface)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parse() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := parse(strings.NewReader(" wlan0: 0000 58.\n"), "wlan0"); err == nil {
		t.Error("expected error for short line")
	}
	if _, err := parse(strings.NewReader(" wlan0: 0000 58. abc -256\n"), "wlan0"); err == nil {
		t.Error("expected error for non-numeric level")
	}
}

func TestReader_RSSI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wireless")
	if err := os.WriteFile(path, []byte(table), 0o600); err != nil {
		t.Fatal(err)
	}

	r := New("wlan0")
	r.path = path
	if got := r.RSSI(); got != -52 {
		t.Errorf("RSSI() = %d, want -52", got)
	}

	r.path = filepath.Join(t.TempDir(), "missing")
	if got := r.RSSI(); got != 0 {
		t.Errorf("RSSI() with missing table = %d, want 0", got)
	}

	if got := New("").RSSI(); got != 0 {
		t.Errorf("RSSI() without interface = %d, want 0", got)
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		dbm  int
		want int
	}{
		{-120, 0},
		{-100, 0},
		{-99, 2},
		{-75, 50},
		{-51, 98},
		{-50, 100},
		{-30, 100},
	}
	for _, tt := range tests {
		if got := Quality(tt.dbm); got != tt.want {
			t.Errorf("Quality(%d) = %d, want %d", tt.dbm, got, tt.want)
		}
	}
}
