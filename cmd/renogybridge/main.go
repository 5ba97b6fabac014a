// Renogy MQTT Bridge
//
// Polls a Renogy solar charge controller over Modbus RTU and publishes
// telemetry to an MQTT broker, with an optional InfluxDB archive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AeroSurvey/RenogyMQTT/internal/bridge"
	"github.com/AeroSurvey/RenogyMQTT/internal/discovery"
	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/config"
	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/influxdb"
	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/logging"
	"github.com/AeroSurvey/RenogyMQTT/internal/renogy"
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

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main so errors
// map to exit codes in one place.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Renogy MQTT bridge",
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

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Locate the controller when the config leaves it unset
	if cfg.Device.Port == "" {
		port, findErr := discovery.FindSerialPort(log)
		if findErr != nil {
			return fmt.Errorf("discovering serial port: %w", findErr)
		}
		cfg.Device.Port = port
	}
	if cfg.Device.BusAddress == 0 {
		address, findErr := discovery.FindBusAddress(cfg.Device.Port, cfg.Device.BaudRate, log)
		if findErr != nil {
			return fmt.Errorf("discovering bus address: %w", findErr)
		}
		cfg.Device.BusAddress = int(address)
	}

	// Open the serial bus
	transport, err := renogy.Dial(renogy.TransportConfig{
		Port:       cfg.Device.Port,
		BusAddress: uint8(cfg.Device.BusAddress),
		BaudRate:   cfg.Device.BaudRate,
		Timeout:    cfg.DeviceTimeout(),
	})
	if err != nil {
		return fmt.Errorf("opening serial port: %w", err)
	}
	defer func() {
		log.Info("closing serial port")
		if closeErr := transport.Close(); closeErr != nil {
			log.Error("error closing serial port", "error", closeErr)
		}
	}()
	log.Info("serial port opened",
		"port", cfg.Device.Port,
		"bus_address", cfg.Device.BusAddress,
		"baud_rate", cfg.Device.BaudRate,
	)

	controller := renogy.NewController(transport)
	controller.SetLogger(log)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		if healthErr := influxClient.HealthCheck(ctx); healthErr != nil {
			return fmt.Errorf("influxdb health check: %w", healthErr)
		}
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Assemble the bridge and open the MQTT session
	b := bridge.New(cfg, controller, log)
	if influxClient != nil {
		b.SetSink(influxClient)
	}

	if err := b.Connect(); err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := b.Disconnect(); closeErr != nil {
			log.Error("error disconnecting from MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	log.Info("initialisation complete, publishing telemetry",
		"interval", cfg.PublishInterval().String(),
	)

	// Blocks until the shutdown signal cancels ctx
	b.Run(ctx)

	log.Info("shutdown signal received, cleaning up")
	log.Info("Renogy MQTT bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RENOGY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RENOGY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
