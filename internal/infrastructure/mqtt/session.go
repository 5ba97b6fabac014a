package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/config"
)

// State is the session's connection state.
//
// Transitions: Disconnected -> Connecting (connect requested),
// Connecting -> Connected (broker ack), Connecting -> Disconnected
// (connect failure), Connected -> Disconnected (explicit disconnect or
// lost connection). Any abrupt termination is observed by the broker
// through the keepalive timeout and answered with the last will.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable state name for logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// StatusSource supplies the status payload published as the last-will
// and birth messages. Implementations must not fail: identity fields
// that cannot be read render as "unknown" instead.
type StatusSource interface {
	StatusMessage(online bool) []byte
}

// Logger is the logging interface the session needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// pahoClient is the slice of pahomqtt.Client the session uses.
// Narrowed to an interface so tests can substitute a recording fake.
type pahoClient interface {
	Connect() pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// newPahoClient builds the underlying client. Replaced in tests.
var newPahoClient = func(opts *pahomqtt.ClientOptions) pahoClient {
	return pahomqtt.NewClient(opts)
}

// Session owns exactly one MQTT connection and its lifecycle.
//
// The session registers a last-will status message before connecting,
// publishes a birth status message when the broker acknowledges the
// connection, and publishes telemetry records to the data topic while
// connected. Publishing while disconnected is rejected, never queued:
// telemetry is a rate sample, not a durable log.
//
// Thread Safety:
//   - State is written by the paho connection callbacks (which run on
//     the library's network goroutine) and read by the publish path;
//     it is the one cross-goroutine cell in the bridge.
type Session struct {
	cfg    config.MQTTConfig
	topics Topics
	source StatusSource

	client pahoClient

	state   State
	stateMu sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// NewSession creates a session for the configured broker.
//
// Topic strings are computed here, once, from the client name; they are
// immutable for the session's lifetime. No network activity happens
// until Connect.
func NewSession(cfg config.MQTTConfig, source StatusSource) *Session {
	return &Session{
		cfg:    cfg,
		topics: NewTopics(cfg.Broker.ClientID),
		source: source,
	}
}

// Connect establishes the broker connection.
//
// It registers the last-will payload (the offline status message)
// before the network connect; the broker captures the will at CONNECT
// time, so setting it afterwards would be a silent no-op. On broker
// acknowledgment the connect callback publishes the birth message to
// the status topic; Connect blocks until that first birth is out, so
// no data message from the caller can precede it. On failure the
// session returns to Disconnected and the caller may retry.
//
// Calling Connect on an already-connected session is a warning no-op.
func (s *Session) Connect() error {
	if s.State() == StateConnected {
		s.log().Warn("already connected to MQTT broker")
		return nil
	}

	opts := buildClientOptions(s.cfg)

	will := s.source.StatusMessage(false)
	opts.SetWill(s.topics.Status(), string(will), statusQoS, true)

	// The OnConnect callback runs on paho's network goroutine, for the
	// initial connect and every reconnect. The session stays Connecting
	// until the callback fires, so a publish racing the callback is
	// rejected rather than slipping out ahead of the birth message.
	birthSent := make(chan struct{})
	var birthOnce sync.Once
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		s.handleConnect()
		birthOnce.Do(func() { close(birthSent) })
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		s.handleConnectionLost(err)
	})

	s.setState(StateConnecting)
	s.client = newPahoClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	select {
	case <-birthSent:
	case <-time.After(defaultConnectTimeout):
		s.client.Disconnect(defaultDisconnectQuiesce)
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: broker acknowledged but connect callback never fired", ErrConnectionFailed)
	}

	return nil
}

// handleConnect runs on broker acknowledgment, for the initial connect
// and every reconnect. It publishes the birth message before any data
// message can succeed for this connection.
func (s *Session) handleConnect() {
	s.setState(StateConnected)

	if err := s.publishStatus(true); err != nil {
		s.log().Error("birth message publish failed", "topic", s.topics.Status(), "error", err)
		return
	}
	s.log().Info("connected, birth message published", "topic", s.topics.Status())
}

// handleConnectionLost runs when the network connection drops. The
// broker publishes the last will on its own once the keepalive lapses.
func (s *Session) handleConnectionLost(err error) {
	s.setState(StateDisconnected)
	s.log().Warn("MQTT connection lost", "error", err)
}

// Publish sends a message to the given topic.
//
// Rejected with ErrNotConnected (logged, no network call) when the
// session is not Connected. Nothing is queued for later delivery; a
// tick that lands in a disconnected window is lost.
func (s *Session) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if s.State() != StateConnected {
		s.log().Error("publish rejected: not connected", "topic", topic)
		return ErrNotConnected
	}

	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishData sends one telemetry record to the data topic.
//
// Data messages use the configured QoS and are never retained: each
// sample supersedes the last, and retaining a ticking quantity forever
// is not desired.
func (s *Session) PublishData(payload []byte) error {
	return s.Publish(s.topics.Data(), payload, byte(s.cfg.QoS), false)
}

// publishStatus publishes the online/offline status message.
// Status messages are always QoS 1 and retained so a newly-subscribing
// observer immediately learns the bridge's state.
func (s *Session) publishStatus(online bool) error {
	return s.Publish(s.topics.Status(), s.source.StatusMessage(online), statusQoS, true)
}

// Disconnect publishes an explicit offline status and cleanly closes
// the connection.
//
// This is the only path that suppresses the last will at the broker;
// the explicit offline publish makes the graceful path converge to the
// same broker-observed state as a crash.
func (s *Session) Disconnect() error {
	if s.client == nil {
		return nil
	}

	if s.State() == StateConnected {
		if err := s.publishStatus(false); err != nil {
			s.log().Warn("offline status publish failed", "error", err)
		}
	}

	s.client.Disconnect(defaultDisconnectQuiesce)
	s.setState(StateDisconnected)

	return nil
}

// State returns the current connection state.
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// IsConnected reports whether the session is Connected.
func (s *Session) IsConnected() bool {
	return s.State() == StateConnected
}

// Topics returns the session's immutable topic namespace.
func (s *Session) Topics() Topics {
	return s.topics
}

// SetLogger sets the session logger. If unset, a no-op logger is used.
func (s *Session) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

func (s *Session) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *Session) log() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	if s.logger == nil {
		return noopLogger{}
	}
	return s.logger
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

var _ pahoClient = pahomqtt.Client(nil)
