package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

// SchemaVersion is the record layout this build reads and writes.
const SchemaVersion = 4

const (
	settingsBucket = "settings"
	overridesKey   = "overrides"
)

// Overrides are operator edits made at runtime. Empty fields leave the
// file configuration untouched. They take effect at the next start.
type Overrides struct {
	Version int `json:"version"`

	Hostname string `json:"hostname,omitempty"`
	Note     string `json:"note,omitempty"`
	Model    string `json:"model,omitempty"`
	Baud     int    `json:"baud,omitempty"`
	Prefix   string `json:"prefix,omitempty"`

	// PeriodicInterval is in seconds; 0 disables periodic publishing, so
	// nil means unset.
	PeriodicInterval *int `json:"periodic_interval,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the values that would stop the bridge from starting.
func (o Overrides) Validate() error {
	if o.Model != "" {
		if _, err := device.ParseModel(o.Model); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if o.Baud < 0 {
		return fmt.Errorf("%w: baud must be positive", ErrInvalid)
	}
	if o.PeriodicInterval != nil && *o.PeriodicInterval < 0 {
		return fmt.Errorf("%w: periodic_interval must be >= 0", ErrInvalid)
	}
	if strings.ContainsAny(o.Hostname, "/#+ ") {
		return fmt.Errorf("%w: hostname must be a single topic level", ErrInvalid)
	}
	if strings.ContainsAny(o.Prefix, "#+") {
		return fmt.Errorf("%w: prefix must not contain wildcards", ErrInvalid)
	}
	return nil
}

// Apply copies every set field onto cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.Hostname != "" {
		cfg.Device.Hostname = o.Hostname
	}
	if o.Note != "" {
		cfg.Device.Note = o.Note
	}
	if o.Model != "" {
		cfg.Device.Model = o.Model
	}
	if o.Baud > 0 {
		cfg.Device.Serial.Baud = o.Baud
	}
	if o.Prefix != "" {
		cfg.MQTT.Prefix = o.Prefix
	}
	if o.PeriodicInterval != nil {
		cfg.MQTT.PeriodicInterval = *o.PeriodicInterval
	}
}

// Store keeps the overrides in a bbolt file.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the settings file.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucket)); err != nil {
			return fmt.Errorf("creating settings bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the settings file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored overrides. A record with another schema version
// yields ErrVersionMismatch and must be ignored.
func (s *Store) Load() (Overrides, error) {
	var o Overrides
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(overridesKey))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("decoding overrides: %w", err)
		}
		return nil
	})
	if err != nil {
		return Overrides{}, err
	}

	if o.Version != SchemaVersion {
		return Overrides{}, fmt.Errorf("%w: stored %d, expected %d", ErrVersionMismatch, o.Version, SchemaVersion)
	}
	return o, nil
}

// Save validates o, stamps it with the current schema version and stores it.
func (s *Store) Save(o Overrides) (Overrides, error) {
	if err := o.Validate(); err != nil {
		return Overrides{}, err
	}
	o.Version = SchemaVersion
	o.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(o)
	if err != nil {
		return Overrides{}, fmt.Errorf("encoding overrides: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(overridesKey), data)
	})
	if err != nil {
		return Overrides{}, fmt.Errorf("saving overrides: %w", err)
	}
	return o, nil
}

// Erase removes the stored overrides. The next start uses the file
// configuration alone.
func (s *Store) Erase() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Delete([]byte(overridesKey))
	})
	if err != nil {
		return fmt.Errorf("erasing overrides: %w", err)
	}
	return nil
}
