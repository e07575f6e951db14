package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/dispatch"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/mqtt"
)

const (
	// ReconnectInterval is the fixed wait after a failed connect attempt.
	ReconnectInterval = 2 * time.Second

	// inboxSize bounds the commands buffered between paho and the loop.
	inboxSize = 16
)

// DisconnectedPayload is the last-will message left on the status topic.
var DisconnectedPayload = []byte(`{"bridge":"disconnected"}`)

// State is the session's connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

// String returns the state name used in logs and the status API.
func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Transport is the broker connection the session drives.
// *mqtt.Client satisfies it.
type Transport interface {
	Connect(opts mqtt.ConnectOptions) error
	IsConnected() bool
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Close() error
}

// StateReader exposes the reconciled power state.
type StateReader interface {
	State() device.PowerState
}

// Indicator is the bus activity LED.
type Indicator interface {
	Steady(on bool)
	Flash()
}

// Logger is the logging subset the session uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options configures a Session.
type Options struct {
	Hostname string
	Note     string
	Model    device.Model
	Baud     int
	Firmware string

	Prefix   string
	QoS      byte
	Username string
	Password string

	// PeriodicInterval is the status republish cadence. Zero disables it.
	PeriodicInterval time.Duration

	State     StateReader
	RSSI      func() int
	Indicator Indicator
	Logger    Logger

	// Now stamps published messages. Defaults to time.Now.
	Now func() time.Time
}

// StatusMessage is the retained status payload.
type StatusMessage struct {
	PowerState device.PowerState `json:"pwrstate"`
	Trigger    device.Trigger    `json:"trigger"`
	Model      string            `json:"model"`
	Note       string            `json:"note"`
	Timestamp  int64             `json:"timestamp"`
	Firmware   string            `json:"firmware"`
	WifiRSSI   int               `json:"wifi_rssi"`
}

type message struct {
	topic   string
	payload []byte
}

// Session keeps the bridge attached to the broker and publishes status.
//
// Service is called from the bridge loop on every step. It detects a
// dropped connection, paces reconnect attempts at ReconnectInterval,
// hands queued commands to the command handler and publishes the
// periodic status.
//
// Thread Safety:
//   - Service, Publish, PowerStateChanged and Close run on the bridge loop.
//   - State is safe from any goroutine.
//   - Inbound messages are queued by paho goroutines and consumed by Service.
type Session struct {
	transport Transport
	opts      Options
	topics    mqtt.Topics

	state   State
	stateMu sync.RWMutex

	// attemptPending is set after a failed connect and cleared on success.
	attemptPending bool
	lastAttempt    time.Time

	nextPeriodic time.Time
	absentLogged bool

	inbox   chan message
	handler func(dispatch.Command)
}

// New creates a disconnected session. A nil transport means no broker is
// configured; the session then never attempts a connection.
func New(transport Transport, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Indicator == nil {
		opts.Indicator = noopIndicator{}
	}
	return &Session{
		transport: transport,
		opts:      opts,
		topics:    mqtt.Topics{Prefix: opts.Prefix, Hostname: opts.Hostname},
		inbox:     make(chan message, inboxSize),
	}
}

// SetCommandHandler registers the consumer of decoded bus commands.
func (s *Session) SetCommandHandler(fn func(dispatch.Command)) {
	s.handler = fn
}

// State returns the current connection state.
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
	s.opts.Indicator.Steady(state == Connected)
}

// CanAttempt reports whether a connect attempt is allowed at now.
func (s *Session) CanAttempt(now time.Time) bool {
	if s.transport == nil {
		return false
	}
	return !s.attemptPending || now.Sub(s.lastAttempt) >= ReconnectInterval
}

// Service advances the session by one step.
func (s *Session) Service(now time.Time) {
	if s.transport == nil {
		if !s.absentLogged {
			s.opts.Logger.Info("no MQTT broker configured, bus disabled")
			s.absentLogged = true
		}
		return
	}

	if s.State() == Connected && !s.transport.IsConnected() {
		s.opts.Logger.Warn("MQTT connection lost")
		s.setState(Disconnected)
	}

	if s.State() == Disconnected {
		if !s.CanAttempt(now) {
			return
		}
		if !s.connect(now) {
			return
		}
	}

	s.drain()
	s.publishPeriodic(now)
}

func (s *Session) connect(now time.Time) bool {
	err := s.transport.Connect(mqtt.ConnectOptions{
		ClientID: s.opts.Hostname,
		Username: s.opts.Username,
		Password: s.opts.Password,
		Will: &mqtt.Will{
			Topic:    s.topics.Status(),
			Payload:  DisconnectedPayload,
			QoS:      s.opts.QoS,
			Retained: true,
		},
	})
	if err != nil {
		s.attemptPending = true
		s.lastAttempt = now
		s.opts.Logger.Warn("MQTT connect failed",
			"error", err,
			"retry_in", ReconnectInterval,
		)
		return false
	}

	// A connect without both subscriptions counts as a failed attempt.
	for _, topic := range []string{s.topics.BroadcastCommand(), s.topics.DeviceCommand()} {
		if err := s.transport.Subscribe(topic, s.opts.QoS, s.enqueue); err != nil {
			s.attemptPending = true
			s.lastAttempt = now
			s.opts.Logger.Warn("MQTT subscribe failed",
				"topic", topic,
				"error", err,
				"retry_in", ReconnectInterval,
			)
			if cerr := s.transport.Close(); cerr != nil {
				s.opts.Logger.Warn("MQTT close after failed subscribe", "error", cerr)
			}
			return false
		}
	}

	s.attemptPending = false
	s.nextPeriodic = now
	s.setState(Connected)
	s.opts.Logger.Info("MQTT connected",
		"client_id", s.opts.Hostname,
		"status_topic", s.topics.Status(),
	)

	// Replace the retained will payload right away. With periodic
	// publishing enabled the first periodic status does this instead.
	if s.opts.PeriodicInterval <= 0 {
		s.Publish(device.TriggerPeriodic)
	}
	return true
}

// enqueue runs on a paho goroutine.
func (s *Session) enqueue(topic string, payload []byte) error {
	msg := message{topic: topic, payload: append([]byte(nil), payload...)}
	select {
	case s.inbox <- msg:
		return nil
	default:
		return ErrInboxFull
	}
}

func (s *Session) drain() {
	for {
		select {
		case msg := <-s.inbox:
			s.handle(msg)
		default:
			return
		}
	}
}

func (s *Session) handle(msg message) {
	s.opts.Indicator.Flash()

	cmd, err := dispatch.ParseCommand(msg.payload)
	if err != nil {
		s.opts.Logger.Warn("dropping malformed bus command",
			"topic", msg.topic,
			"error", err,
		)
		return
	}

	if cmd.Empty() {
		s.opts.Logger.Debug("ignoring bus command without known keys", "topic", msg.topic)
		return
	}

	s.opts.Logger.Debug("bus command received", "topic", msg.topic, "command", cmd.String())
	if s.handler != nil {
		s.handler(cmd)
	}
}

func (s *Session) publishPeriodic(now time.Time) {
	if s.opts.PeriodicInterval <= 0 {
		return
	}
	if now.Before(s.nextPeriodic) {
		return
	}
	s.nextPeriodic = now.Add(s.opts.PeriodicInterval)
	s.Publish(device.TriggerPeriodic)
}

// Publish sends the retained status with the given trigger. It is a no-op
// while disconnected. Failures are logged and not retried.
func (s *Session) Publish(trigger device.Trigger) {
	if s.State() != Connected {
		s.opts.Logger.Debug("status not published, bus disconnected", "trigger", trigger)
		return
	}

	payload, err := json.Marshal(s.status(trigger))
	if err != nil {
		s.opts.Logger.Warn("failed to encode status", "error", err)
		return
	}

	s.opts.Indicator.Flash()
	if err := s.transport.Publish(s.topics.Status(), payload, s.opts.QoS, true); err != nil {
		s.opts.Logger.Warn("status publish failed", "trigger", trigger, "error", err)
		return
	}
	s.opts.Logger.Debug("status published", "trigger", trigger)
}

func (s *Session) status(trigger device.Trigger) StatusMessage {
	msg := StatusMessage{
		PowerState: device.PowerUnknown,
		Trigger:    trigger,
		Model:      s.opts.Model.Label(s.opts.Baud),
		Note:       s.opts.Note,
		Timestamp:  s.opts.Now().Unix(),
		Firmware:   s.opts.Firmware,
	}
	if s.opts.State != nil {
		msg.PowerState = s.opts.State.State()
	}
	if s.opts.RSSI != nil {
		msg.WifiRSSI = s.opts.RSSI()
	}
	return msg
}

// PowerStateChanged publishes a poll-triggered status. It is registered as
// a reconciler listener.
func (s *Session) PowerStateChanged(device.Change) {
	s.Publish(device.TriggerPoll)
}

// Close leaves the disconnected marker on the status topic and closes the
// transport.
func (s *Session) Close() error {
	if s.transport == nil {
		return nil
	}
	if s.State() == Connected && s.transport.IsConnected() {
		if err := s.transport.Publish(s.topics.Status(), DisconnectedPayload, s.opts.QoS, true); err != nil {
			s.opts.Logger.Warn("failed to publish disconnect marker", "error", err)
		}
	}
	s.setState(Disconnected)
	return s.transport.Close()
}

type noopIndicator struct{}

func (noopIndicator) Steady(bool) {}
func (noopIndicator) Flash()      {}
