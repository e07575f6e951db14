package influxdb_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for a local development InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "beamercontrol-dev-token",
		Org:           "beamercontrol",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func ping(t *testing.T, c *influxdb.Client) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Ping(ctx)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.InfluxDBConfig)
		want   error
	}{
		{"disabled", func(c *config.InfluxDBConfig) { c.Enabled = false }, influxdb.ErrDisabled},
		{"no url", func(c *config.InfluxDBConfig) { c.URL = "" }, influxdb.ErrInvalidConfig},
		{"no org", func(c *config.InfluxDBConfig) { c.Org = "" }, influxdb.ErrInvalidConfig},
		{"no bucket", func(c *config.InfluxDBConfig) { c.Bucket = "" }, influxdb.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := influxdb.New(cfg); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_DoesNotNeedServer(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	client, err := influxdb.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if err := ping(t, client); !errors.Is(err, influxdb.ErrUnreachable) {
		t.Errorf("Ping() error = %v, want ErrUnreachable", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	client, err := influxdb.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Dropped silently after close.
	client.WritePoint("late", map[string]string{"host": "test"}, map[string]interface{}{"value": 1})
	client.Flush()

	if err := ping(t, client); !errors.Is(err, influxdb.ErrClosed) {
		t.Errorf("Ping() after Close = %v, want ErrClosed", err)
	}
}

func TestWriteAndFlush(t *testing.T) {
	client, err := influxdb.New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if os.Getenv("RUN_INTEGRATION") == "" && ping(t, client) != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}

	var mu sync.Mutex
	var writeErr error
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	client.WritePoint("flush_test", map[string]string{"host": "test"}, map[string]interface{}{"value": 1.0})
	client.Flush()

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}
