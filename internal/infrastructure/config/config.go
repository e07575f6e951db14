package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the beamer bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Database DatabaseConfig `yaml:"database"`
	Settings SettingsConfig `yaml:"settings"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	Admin    AdminConfig    `yaml:"admin"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	MDNS     MDNSConfig     `yaml:"mdns"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig describes the attached projector and how to reach it.
type DeviceConfig struct {
	// Hostname identifies this bridge on the bus and on the network.
	Hostname string `yaml:"hostname"`

	// Note is a free-text label included in every status publication.
	Note string `yaml:"note"`

	// Model selects the wire protocol: "", "none", "simulated", "benq" or "canon".
	Model string `yaml:"model"`

	Serial SerialConfig `yaml:"serial"`

	// WirelessInterface is read from /proc/net/wireless for the signal figure.
	WirelessInterface string `yaml:"wireless_interface"`
}

// SerialConfig contains the serial link parameters.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SettingsConfig points at the persisted runtime settings store.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`

	// Prefix is the topic root. Status goes to {prefix}/{hostname}/status.
	Prefix string `yaml:"prefix"`

	// PeriodicInterval is the status republish period in seconds (0 = off).
	PeriodicInterval int `yaml:"periodic_interval"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
// An empty Host disables the bus entirely.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// AdminConfig holds the credentials protecting the control API.
// Leaving both empty disables authentication.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// GPIOConfig describes the front-panel button and indicator LEDs.
type GPIOConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Chip       string `yaml:"chip"`
	ButtonLine int    `yaml:"button_line"`
	BusLEDLine int    `yaml:"bus_led_line"`
	WebLEDLine int    `yaml:"web_led_line"`
}

// MDNSConfig controls hostname advertisement on the local network.
type MDNSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// validModels lists the accepted device.model values.
var validModels = map[string]bool{
	"":          true,
	"none":      true,
	"simulated": true,
	"benq":      true,
	"canon":     true,
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BEAMER_SECTION_KEY
// For example: BEAMER_MQTT_HOST, BEAMER_DEVICE_MODEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with factory defaults: no device model and no broker.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Hostname: defaultHostname(),
			Serial: SerialConfig{
				Port: "/dev/ttyUSB0",
				Baud: 19200,
			},
			WirelessInterface: "wlan0",
		},
		Database: DatabaseConfig{
			Path:        "./data/beamer.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Settings: SettingsConfig{
			Path: "./data/settings.db",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Port: 1883,
			},
			Prefix: "beamer",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		GPIO: GPIOConfig{
			Chip:       "gpiochip0",
			ButtonLine: 4,
			BusLEDLine: 17,
			WebLEDLine: 27,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func defaultHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "beamercontrol"
	}
	return name
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BEAMER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("BEAMER_DEVICE_HOSTNAME"); v != "" {
		cfg.Device.Hostname = v
	}
	if v := os.Getenv("BEAMER_DEVICE_MODEL"); v != "" {
		cfg.Device.Model = v
	}
	if v := os.Getenv("BEAMER_SERIAL_PORT"); v != "" {
		cfg.Device.Serial.Port = v
	}

	// Database
	if v := os.Getenv("BEAMER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BEAMER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BEAMER_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("BEAMER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BEAMER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("BEAMER_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Admin
	if v := os.Getenv("BEAMER_ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("BEAMER_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BEAMER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.Hostname == "" {
		errs = append(errs, "device.hostname is required")
	}
	if !validModels[strings.ToLower(c.Device.Model)] {
		errs = append(errs, fmt.Sprintf("device.model %q is not one of none, simulated, benq, canon", c.Device.Model))
	}
	if c.Device.Serial.Baud <= 0 {
		errs = append(errs, "device.serial.baud must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Settings.Path == "" {
		errs = append(errs, "settings.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.PeriodicInterval < 0 {
		errs = append(errs, "mqtt.periodic_interval must not be negative")
	}
	if c.MQTT.Broker.Host != "" {
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.Prefix == "" {
			errs = append(errs, "mqtt.prefix is required when a broker is configured")
		}
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Admin credentials go together
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		errs = append(errs, "admin.username and admin.password must be set together")
	}

	if c.GPIO.Enabled && c.GPIO.Chip == "" {
		errs = append(errs, "gpio.chip is required when gpio is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetPeriodicInterval returns the status republish period (0 = disabled).
func (c *Config) GetPeriodicInterval() time.Duration {
	return time.Duration(c.MQTT.PeriodicInterval) * time.Second
}
