package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/foorschtbar/BeamerControl/internal/infrastructure/config"
)

// testConfig points at a port where no broker listens.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host: "127.0.0.1",
			Port: 19999,
		},
		QoS:    0,
		Prefix: "beamer",
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	will := &Will{Topic: "beamer/aula/status", Payload: []byte("gone"), QoS: 1, Retained: true}

	opts := buildClientOptions(cfg, ConnectOptions{
		ClientID: "beamercontrol-aula",
		Username: "user",
		Password: "secret",
		Will:     will,
	})

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:19999" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:19999]", opts.Servers)
	}
	if opts.ClientID != "beamercontrol-aula" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "user" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false")
	}
	if opts.ConnectRetry {
		t.Error("ConnectRetry = true, want false")
	}
	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != will.Topic || string(opts.WillPayload) != "gone" {
		t.Errorf("will = %q %q", opts.WillTopic, opts.WillPayload)
	}
	if opts.WillQos != 1 || !opts.WillRetained {
		t.Errorf("will qos=%d retained=%v, want 1 true", opts.WillQos, opts.WillRetained)
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured for plain connection")
	}
}

func TestBuildClientOptions_TLSAndAnonymous(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg, ConnectOptions{ClientID: "x"})

	if got := opts.Servers[0].String(); got != "ssl://127.0.0.1:8883" {
		t.Errorf("server = %q, want ssl://127.0.0.1:8883", got)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS min version not applied")
	}
	if opts.Username != "" {
		t.Errorf("Username = %q, want empty", opts.Username)
	}
	if opts.WillEnabled {
		t.Error("WillEnabled = true without a will")
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_BrokerRefused(t *testing.T) {
	client := New(testConfig())

	err := client.Connect(ConnectOptions{ClientID: "beamercontrol-test"})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Connect() error = %v, want ErrConnectionFailed", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after failed connect")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := New(testConfig())
	if client.IsConnected() {
		t.Error("IsConnected() = true before Connect")
	}

	var nilClient *Client
	if nilClient.IsConnected() {
		t.Error("nil client reports connected")
	}
}

func TestCloseNeverConnected(t *testing.T) {
	client := New(testConfig())
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := New(testConfig())

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Publish / Subscribe Validation
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := New(testConfig())

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 0, ErrInvalidTopic},
		{"invalid qos", "beamer/aula/status", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "beamer/aula/status", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
		{"disconnected", "beamer/aula/status", []byte("x"), 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := client.PublishRetained("beamer/aula/status", nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := New(testConfig())
	noop := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		want    error
	}{
		{"empty topic", "", 0, noop, ErrInvalidTopic},
		{"invalid qos", "beamercmd", 3, noop, ErrInvalidQoS},
		{"nil handler", "beamercmd", 0, nil, ErrSubscribeFailed},
		{"disconnected", "beamercmd", 0, noop, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.want) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// =============================================================================
// Handler Wrapping
// =============================================================================

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warns = append(l.warns, msg) }

func TestWrapHandler(t *testing.T) {
	client := New(testConfig())
	logger := &recordingLogger{}
	client.SetLogger(logger)

	var gotTopic, gotPayload string
	ok := client.wrapHandler(func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, string(payload)
		return nil
	})
	ok(nil, fakeMessage{topic: "beamercmd", payload: []byte(`{"pwr":1}`)})
	if gotTopic != "beamercmd" || gotPayload != `{"pwr":1}` {
		t.Errorf("handler got %q %q", gotTopic, gotPayload)
	}

	failing := client.wrapHandler(func(string, []byte) error { return errors.New("boom") })
	failing(nil, fakeMessage{topic: "beamercmd"})
	if len(logger.warns) != 1 {
		t.Errorf("warns = %d, want 1", len(logger.warns))
	}

	panicking := client.wrapHandler(func(string, []byte) error { panic("bad") })
	panicking(nil, fakeMessage{topic: "beamercmd"})
	if len(logger.errors) != 1 {
		t.Errorf("errors = %d, want 1", len(logger.errors))
	}
}

func TestConnectionStateHandlers(t *testing.T) {
	client := New(testConfig())
	logger := &recordingLogger{}
	client.SetLogger(logger)

	client.handleConnect()
	client.connMu.RLock()
	up := client.connected
	client.connMu.RUnlock()
	if !up {
		t.Error("handleConnect did not mark the client connected")
	}

	client.handleDisconnect(errors.New("eof"))
	client.connMu.RLock()
	up = client.connected
	client.connMu.RUnlock()
	if up {
		t.Error("handleDisconnect did not mark the client disconnected")
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %d, want 1 for the lost connection", len(logger.warns))
	}
}

// =============================================================================
// Topics
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "beamer", Hostname: "aula"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", topics.Status(), "beamer/aula/status"},
		{"device command", topics.DeviceCommand(), "beamer/aula/cmd"},
		{"broadcast command", topics.BroadcastCommand(), "beamercmd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
