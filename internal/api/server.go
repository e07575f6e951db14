package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/bridge"
	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/logging"
	"github.com/foorschtbar/BeamerControl/internal/session"
	"github.com/foorschtbar/BeamerControl/internal/settings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// PowerReader exposes the reconciled power state.
type PowerReader interface {
	State() device.PowerState
}

// BusReader exposes the bus session state.
type BusReader interface {
	State() session.State
}

// Submitter queues intents for the bridge loop.
type Submitter interface {
	Submit(in bridge.Intent) error
}

// HistoryReader lists recorded transitions.
type HistoryReader interface {
	GetHistory(ctx context.Context, limit int) ([]device.StateHistoryEntry, error)
}

// SettingsStore persists operator overrides.
type SettingsStore interface {
	Load() (settings.Overrides, error)
	Save(o settings.Overrides) (settings.Overrides, error)
}

// HealthChecker is a dependency that can report whether it is usable.
// *database.DB and *mqtt.Client satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Indicator is the web activity LED.
type Indicator interface {
	Flash()
}

// Identity is the static description of this bridge shown by /status.
type Identity struct {
	Hostname   string
	Note       string
	ModelLabel string
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	Admin  config.AdminConfig
	Logger *logging.Logger

	Identity  Identity
	Power     PowerReader
	Bus       BusReader
	Submitter Submitter

	// Optional.
	History  HistoryReader
	Settings SettingsStore
	Database HealthChecker
	Broker   HealthChecker
	RSSI     func() int
	WebLED   Indicator
	Hub      *Hub

	Version string
}

// Server is the HTTP API server for the bridge.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	admin     config.AdminConfig
	logger    *logging.Logger
	identity  Identity
	power     PowerReader
	bus       BusReader
	submitter Submitter
	history   HistoryReader
	settings  SettingsStore
	database  HealthChecker
	broker    HealthChecker
	rssi      func() int
	webLED    Indicator
	hub       *Hub
	version   string
	server    *http.Server
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Power == nil {
		return nil, fmt.Errorf("power reader is required")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("bus reader is required")
	}
	if deps.Submitter == nil {
		return nil, fmt.Errorf("intent submitter is required")
	}

	s := &Server{
		cfg:       deps.Config,
		admin:     deps.Admin,
		logger:    deps.Logger,
		identity:  deps.Identity,
		power:     deps.Power,
		bus:       deps.Bus,
		submitter: deps.Submitter,
		history:   deps.History,
		settings:  deps.Settings,
		database:  deps.Database,
		broker:    deps.Broker,
		rssi:      deps.RSSI,
		webLED:    deps.WebLED,
		hub:       deps.Hub,
		version:   deps.Version,
	}
	if s.hub == nil {
		s.hub = NewHub(deps.Logger)
	}
	return s, nil
}

// Hub returns the WebSocket hub so it can be registered as a listener.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
