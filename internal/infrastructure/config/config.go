package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Renogy MQTT bridge.
// All configuration is loaded from YAML and can be overridden by
// environment variables (optionally supplied through a .env file).
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Device   DeviceConfig   `yaml:"device"`
	Publish  PublishConfig  `yaml:"publish"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keepalive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DeviceConfig describes the serial connection to the charge controller.
//
// Port and BusAddress may be left unset, in which case the bridge probes
// for them at startup (see internal/discovery). Startup fails unless
// exactly one candidate is found.
type DeviceConfig struct {
	// Port is the serial device path, e.g. "/dev/ttyUSB0".
	// Empty means auto-discover.
	Port string `yaml:"port"`

	// BusAddress is the Modbus slave address of the controller (1-247).
	// Zero means auto-discover.
	BusAddress int `yaml:"bus_address"`

	// BaudRate for the serial link. The controller speaks 9600 8N1.
	BaudRate int `yaml:"baud_rate"`

	// Timeout is the per-request read timeout in milliseconds.
	Timeout int `yaml:"timeout"`
}

// PublishConfig controls the telemetry publish schedule.
type PublishConfig struct {
	// Interval between telemetry publishes, in seconds.
	Interval int `yaml:"interval"`
}

// InfluxDBConfig contains settings for the optional InfluxDB sink.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. .env file in the working directory, if present
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern RENOGY_SECTION_KEY,
// for example RENOGY_MQTT_HOST or RENOGY_DEVICE_PORT.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A missing .env file is not an error; it is a local convenience.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the bridge's defaults.
// Broker port 1883, keepalive 60s and publish interval 60s match the
// controller vendor's reference tooling.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "renogy-mqtt",
			},
			QoS:       1,
			KeepAlive: 60,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Device: DeviceConfig{
			BaudRate: 9600,
			Timeout:  1000,
		},
		Publish: PublishConfig{
			Interval: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies RENOGY_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RENOGY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("RENOGY_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("RENOGY_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("RENOGY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RENOGY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("RENOGY_DEVICE_PORT"); v != "" {
		cfg.Device.Port = v
	}
	if v := os.Getenv("RENOGY_DEVICE_BUS_ADDRESS"); v != "" {
		if addr, err := strconv.Atoi(v); err == nil {
			cfg.Device.BusAddress = addr
		}
	}
	if v := os.Getenv("RENOGY_PUBLISH_INTERVAL"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			cfg.Publish.Interval = interval
		}
	}
	if v := os.Getenv("RENOGY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if strings.ContainsAny(c.MQTT.Broker.ClientID, "/+#") {
		errs = append(errs, "mqtt.broker.client_id must not contain MQTT topic characters (/ + #)")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < 1 {
		errs = append(errs, "mqtt.keepalive must be at least 1 second")
	}
	if c.Device.BusAddress < 0 || c.Device.BusAddress > 247 {
		errs = append(errs, "device.bus_address must be between 1 and 247 (or 0 for auto-discovery)")
	}
	if c.Device.BaudRate < 1 {
		errs = append(errs, "device.baud_rate must be positive")
	}
	if c.Device.Timeout < 1 {
		errs = append(errs, "device.timeout must be positive")
	}
	if c.Publish.Interval < 1 {
		errs = append(errs, "publish.interval must be at least 1 second")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DeviceTimeout returns the serial read timeout as a Duration.
func (c *Config) DeviceTimeout() time.Duration {
	return time.Duration(c.Device.Timeout) * time.Millisecond
}

// PublishInterval returns the telemetry publish interval as a Duration.
func (c *Config) PublishInterval() time.Duration {
	return time.Duration(c.Publish.Interval) * time.Second
}

// KeepAliveDuration returns the MQTT keepalive as a Duration.
func (c *MQTTConfig) KeepAliveDuration() time.Duration {
	return time.Duration(c.KeepAlive) * time.Second
}
