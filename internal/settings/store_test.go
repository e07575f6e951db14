package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func TestLoad_Empty(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestSaveLoad(t *testing.T) {
	s := openTestStore(t)

	saved, err := s.Save(Overrides{
		Note:             "Room 101",
		Model:            "canon",
		Baud:             9600,
		PeriodicInterval: intPtr(0),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Version != SchemaVersion {
		t.Errorf("saved version = %d, want %d", saved.Version, SchemaVersion)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Note != "Room 101" || got.Model != "canon" || got.Baud != 9600 {
		t.Errorf("Load() = %+v", got)
	}
	if got.PeriodicInterval == nil || *got.PeriodicInterval != 0 {
		t.Error("explicit zero periodic interval lost")
	}
}

func TestLoad_VersionMismatch(t *testing.T) {
	s := openTestStore(t)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(overridesKey), []byte(`{"version":3,"model":"benq"}`))
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("Load() error = %v, want ErrVersionMismatch", err)
	}
	if got.Model != "" {
		t.Errorf("mismatched record leaked values: %+v", got)
	}
}

func TestErase(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Save(Overrides{Note: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Erase(); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Erase error = %v, want ErrNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		o       Overrides
		wantErr bool
	}{
		{"empty", Overrides{}, false},
		{"valid model", Overrides{Model: "BenQ"}, false},
		{"unknown model", Overrides{Model: "epson"}, true},
		{"negative baud", Overrides{Baud: -1}, true},
		{"negative interval", Overrides{PeriodicInterval: intPtr(-5)}, true},
		{"hostname with slash", Overrides{Hostname: "a/b"}, true},
		{"prefix wildcard", Overrides{Prefix: "beamer/#"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Save(Overrides{Model: "epson"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Save() error = %v, want ErrInvalid", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Error("invalid overrides were stored")
	}
}

func TestApply(t *testing.T) {
	cfg := config.Default()
	cfg.MQTT.PeriodicInterval = 60

	Overrides{
		Hostname:         "aula",
		Note:             "Room 101",
		Model:            "benq",
		Baud:             115200,
		Prefix:           "lab",
		PeriodicInterval: intPtr(0),
	}.Apply(cfg)

	if cfg.Device.Hostname != "aula" || cfg.Device.Note != "Room 101" || cfg.Device.Model != "benq" {
		t.Errorf("device = %+v", cfg.Device)
	}
	if cfg.Device.Serial.Baud != 115200 {
		t.Errorf("baud = %d", cfg.Device.Serial.Baud)
	}
	if cfg.MQTT.Prefix != "lab" || cfg.MQTT.PeriodicInterval != 0 {
		t.Errorf("mqtt prefix=%q interval=%d", cfg.MQTT.Prefix, cfg.MQTT.PeriodicInterval)
	}

	before := *cfg
	Overrides{}.Apply(cfg)
	if cfg.Device != before.Device || cfg.MQTT.Prefix != before.MQTT.Prefix {
		t.Error("empty overrides changed the configuration")
	}
}
