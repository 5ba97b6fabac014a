package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for the broker
	// to acknowledge the initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for a publish
	// acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time allowed for in-flight
	// messages on disconnect, in milliseconds.
	defaultDisconnectQuiesce = 1000

	// maxQoS is the highest valid QoS level.
	maxQoS = 2

	// statusQoS is the QoS for status (will and birth) messages.
	// Always 1: an observer must learn the online state exactly.
	statusQoS = 1

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho options from the bridge config.
//
// Configures broker URL (tcp:// or ssl://), client ID, credentials,
// clean session, auto-reconnect with bounded backoff, keepalive, and
// TLS when enabled. The last will is set separately by Connect, since
// its payload is built per connection attempt.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Start fresh on connect; the bridge holds no broker-side session
	// state between runs.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)

	// Keepalive drives the broker's dead-connection detection, which in
	// turn triggers the last will on abrupt termination.
	opts.SetKeepAlive(cfg.KeepAliveDuration())

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}
