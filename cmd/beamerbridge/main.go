// BeamerControl - projector power bridge
//
// This is the main entry point for the bridge. It keeps the reported power
// state of one projector in sync with an MQTT bus, a small HTTP API and a
// front-panel button.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/foorschtbar/BeamerControl/migrations"

	"github.com/foorschtbar/BeamerControl/internal/api"
	"github.com/foorschtbar/BeamerControl/internal/bridge"
	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/dispatch"
	"github.com/foorschtbar/BeamerControl/internal/gpio"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/announce"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/database"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/influxdb"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/logging"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/mqtt"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/serialport"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/wireless"
	"github.com/foorschtbar/BeamerControl/internal/protocol"
	"github.com/foorschtbar/BeamerControl/internal/reconciler"
	"github.com/foorschtbar/BeamerControl/internal/session"
	"github.com/foorschtbar/BeamerControl/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyRetention is how long transitions are kept in SQLite.
const historyRetention = 90 * 24 * time.Hour

const influxPingTimeout = 3 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Only configuration and local storage can fail startup. A missing serial
// cable, broker, GPIO chip or InfluxDB server is logged and the bridge runs
// without it.
func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logging.Default()
	log.Info("starting BeamerControl",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Settings store (bbolt). Stored overrides win over the file.
	store, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	cfg = applyOverrides(cfg, store, log)

	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // Nothing left to report to
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing settings", "error", closeErr)
		}
	}()
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"output", cfg.Logging.Output,
	)

	model, err := device.ParseModel(cfg.Device.Model)
	if err != nil {
		return fmt.Errorf("device model: %w", err)
	}
	modelLabel := model.Label(cfg.Device.Serial.Baud)

	// Transition history (SQLite)
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	historyRepo := device.NewSQLiteStateHistoryRepository(db.DB)
	if pruned, pruneErr := historyRepo.PruneHistory(ctx, historyRetention); pruneErr != nil {
		log.Warn("failed to prune state history", "error", pruneErr)
	} else if pruned > 0 {
		log.Info("pruned state history", "rows", pruned)
	}

	// Front panel. Intents are routed to the loop once it exists.
	var loop atomic.Pointer[bridge.Bridge]
	submit := func(kind bridge.IntentKind) func() {
		return func() {
			b := loop.Load()
			if b == nil {
				return
			}
			if submitErr := b.Submit(bridge.Intent{Kind: kind}); submitErr != nil {
				log.Warn("button intent dropped", "intent", kind, "error", submitErr)
			}
		}
	}
	var busLED, webLED gpio.Indicator = gpio.Noop{}, gpio.Noop{}
	if cfg.GPIO.Enabled {
		panel, panelErr := gpio.Open(cfg.GPIO, gpio.Handlers{
			Press:    submit(bridge.IntentButton),
			LongHold: submit(bridge.IntentLongHold),
		})
		if panelErr != nil {
			log.Warn("front panel unavailable", "chip", cfg.GPIO.Chip, "error", panelErr)
		} else {
			defer func() {
				if closeErr := panel.Close(); closeErr != nil {
					log.Error("error closing front panel", "error", closeErr)
				}
			}()
			busLED, webLED = panel.BusLED(), panel.WebLED()
			log.Info("front panel ready", "chip", cfg.GPIO.Chip)
		}
	}

	// Device link and protocol adapter
	var link protocol.Link
	if model.UsesSerial() {
		port, openErr := serialport.Open(serialport.Config{
			Device: cfg.Device.Serial.Port,
			Baud:   cfg.Device.Serial.Baud,
		})
		if openErr != nil {
			log.Warn("serial link unavailable, power state will stay unknown",
				"port", cfg.Device.Serial.Port, "error", openErr)
		} else {
			link = port
			log.Info("serial link open", "port", port.Device(), "baud", cfg.Device.Serial.Baud)
			defer func() {
				if closeErr := port.Close(); closeErr != nil {
					log.Error("error closing serial link", "error", closeErr)
				}
			}()
		}
	}
	adapter := protocol.New(model, link, protocol.Options{
		Logger:     log.Component("protocol"),
		OnActivity: busLED.Flash,
	})
	log.Info("protocol adapter selected", "model", modelLabel)

	rssi := wireless.New(cfg.Device.WirelessInterface)

	// Bus session. A nil transport means no broker is configured.
	var transport session.Transport
	var broker api.HealthChecker
	if cfg.MQTT.Broker.Host != "" {
		client := mqtt.New(cfg.MQTT)
		client.SetLogger(log.Component("mqtt"))
		transport, broker = client, client
	}

	rec := reconciler.New(adapter)
	sess := session.New(transport, session.Options{
		Hostname:         cfg.Device.Hostname,
		Note:             cfg.Device.Note,
		Model:            model,
		Baud:             cfg.Device.Serial.Baud,
		Firmware:         version,
		Prefix:           cfg.MQTT.Prefix,
		QoS:              byte(cfg.MQTT.QoS),
		Username:         cfg.MQTT.Auth.Username,
		Password:         cfg.MQTT.Auth.Password,
		PeriodicInterval: cfg.GetPeriodicInterval(),
		State:            rec,
		RSSI:             rssi.RSSI,
		Indicator:        busLED,
		Logger:           log.Component("session"),
	})

	disp := dispatch.New(adapter, rec, sess, log.Component("dispatch"))
	disp.OnFactoryReset(func() {
		if eraseErr := store.Erase(); eraseErr != nil {
			log.Error("factory reset failed", "error", eraseErr)
			return
		}
		log.Warn("factory reset, settings erased; stopping for restart")
		cancel()
	})

	loopBridge := bridge.New(rec, disp, sess, log.Component("bridge"))
	loop.Store(loopBridge)

	// HTTP API
	server, err := api.New(api.Deps{
		Config: cfg.API,
		Admin:  cfg.Admin,
		Logger: log.Component("api"),
		Identity: api.Identity{
			Hostname:   cfg.Device.Hostname,
			Note:       cfg.Device.Note,
			ModelLabel: modelLabel,
		},
		Power:     rec,
		Bus:       sess,
		Submitter: loopBridge,
		History:   historyRepo,
		Settings:  store,
		Database:  db,
		Broker:    broker,
		RSSI:      rssi.RSSI,
		WebLED:    webLED,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Listeners run on the loop goroutine in registration order.
	rec.AddListener(sess)
	rec.AddListener(device.NewHistoryRecorder(historyRepo, log.Component("history")))
	rec.AddListener(server.Hub())

	// Telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.New(cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("telemetry disabled", "error", influxErr)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Warn("InfluxDB write error", "error", err)
			})
			pingCtx, pingCancel := context.WithTimeout(ctx, influxPingTimeout)
			if pingErr := influxClient.Ping(pingCtx); pingErr != nil {
				log.Warn("InfluxDB not reachable yet, points will be retried", "error", pingErr)
			}
			pingCancel()

			telemetry := influxdb.NewTelemetry(influxClient, cfg.Device.Hostname, model)
			rec.SetPollRecorder(telemetry)
			rec.AddListener(telemetry)
			log.Info("telemetry enabled", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// mDNS (optional)
	if cfg.MDNS.Enabled {
		announcer, announceErr := announce.Start(announce.Config{
			Hostname: cfg.Device.Hostname,
			Port:     cfg.API.Port,
			IPs:      announce.LocalIPs(),
			TXT:      []string{"model=" + modelLabel, "version=" + version},
		})
		if announceErr != nil {
			log.Warn("mDNS announcement failed", "error", announceErr)
		} else {
			defer func() {
				if closeErr := announcer.Close(); closeErr != nil {
					log.Error("error closing mDNS responder", "error", closeErr)
				}
			}()
			log.Info("mDNS announcing", "host", cfg.Device.Hostname+".local")
		}
	}

	log.Info("initialisation complete",
		"hostname", cfg.Device.Hostname,
		"model", modelLabel,
		"broker", cfg.MQTT.Broker.Host,
	)

	// Run blocks until shutdown and closes the bus session on the way out.
	if err := loopBridge.Run(ctx); err != nil {
		return fmt.Errorf("bridge loop: %w", err)
	}

	log.Info("BeamerControl stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BEAMER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BEAMER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// applyOverrides layers stored settings over the file configuration.
// Missing, outdated or unusable records leave cfg as loaded.
func applyOverrides(cfg *config.Config, store *settings.Store, log *logging.Logger) *config.Config {
	o, err := store.Load()
	switch {
	case errors.Is(err, settings.ErrNotFound):
		log.Info("no stored settings, using configuration file")
		return cfg
	case errors.Is(err, settings.ErrVersionMismatch):
		log.Warn("stored settings have an old layout, ignoring them", "error", err)
		return cfg
	case err != nil:
		log.Warn("failed to load stored settings", "error", err)
		return cfg
	}

	merged := *cfg
	o.Apply(&merged)
	if err := merged.Validate(); err != nil {
		log.Warn("stored settings rejected", "error", err)
		return cfg
	}
	log.Info("stored settings applied", "updated_at", o.UpdatedAt)
	return &merged
}
