package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/config"
	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/mqtt"
	"github.com/AeroSurvey/RenogyMQTT/internal/renogy"
)

// unknownField stands in for identity values the controller would not
// report at startup.
const unknownField = "unknown"

// Device is the controller session the bridge polls.
type Device interface {
	Model() (string, error)
	SoftwareVersion() (string, error)
	HardwareVersion() (string, error)
	SerialNumber() (uint32, error)
	VoltageRating() (float64, error)
	CurrentRating() (float64, error)
	DischargeRating() (float64, error)
	ControllerType() (string, error)
	GetData() renogy.TelemetryRecord
}

// publisher is the MQTT surface the bridge drives.
type publisher interface {
	Connect() error
	PublishData(payload []byte) error
	Disconnect() error
}

// Sink receives each tick's readings for archival.
type Sink interface {
	WriteTelemetry(clientName string, fields map[string]float64, timestamp time.Time)
}

// Logger is the logging interface the bridge needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// statusPayload is the retained status document. Identity fields are
// captured once at connect time; "unknown" marks reads that failed.
type statusPayload struct {
	Client          string `json:"client"`
	Online          bool   `json:"online"`
	Model           string `json:"model"`
	SoftwareVersion string `json:"software_version"`
	HardwareVersion string `json:"hardware_version"`
	SerialNumber    string `json:"serial_number"`
	ControllerType  string `json:"controller_type"`

	VoltageRating   *float64 `json:"voltage_rating,omitempty"`
	CurrentRating   *float64 `json:"current_rating,omitempty"`
	DischargeRating *float64 `json:"discharge_rating,omitempty"`
}

// Bridge wires the controller session to the MQTT session and the
// optional archival sink. It is the status source for the MQTT
// lifecycle: the will, birth and farewell payloads all come from
// StatusMessage.
type Bridge struct {
	cfg     *config.Config
	device  Device
	session publisher
	sink    Sink
	logger  Logger

	identity statusPayload
}

// New builds a bridge over the given device. The MQTT session is
// created here with the bridge itself as its status source, so the
// will payload registered at connect time carries the device identity.
func New(cfg *config.Config, device Device, logger Logger) *Bridge {
	if logger == nil {
		logger = noopLogger{}
	}

	b := &Bridge{
		cfg:    cfg,
		device: device,
		logger: logger,
	}

	session := mqtt.NewSession(cfg.MQTT, b)
	session.SetLogger(logger)
	b.session = session

	return b
}

// SetSink attaches an archival sink. Call before Run.
func (b *Bridge) SetSink(sink Sink) {
	b.sink = sink
}

// Connect reads the device identity and opens the MQTT session.
//
// Identity is read first: the broker captures the will payload during
// the connect handshake, so the offline document must be complete
// before the network dial starts.
func (b *Bridge) Connect() error {
	b.loadIdentity()

	if err := b.session.Connect(); err != nil {
		return fmt.Errorf("connecting mqtt session: %w", err)
	}

	return nil
}

// Disconnect publishes the farewell status and closes the session.
func (b *Bridge) Disconnect() error {
	return b.session.Disconnect()
}

// loadIdentity captures the controller's identity registers. Failed
// reads are logged and fall back to "unknown"; identity is cosmetic
// and must never block the bridge from coming up.
func (b *Bridge) loadIdentity() {
	id := statusPayload{
		Client:          b.cfg.MQTT.Broker.ClientID,
		Model:           unknownField,
		SoftwareVersion: unknownField,
		HardwareVersion: unknownField,
		SerialNumber:    unknownField,
		ControllerType:  unknownField,
	}

	if v, err := b.device.Model(); err == nil {
		id.Model = v
	} else {
		b.logger.Warn("identity read failed", "field", "model", "error", err)
	}
	if v, err := b.device.SoftwareVersion(); err == nil {
		id.SoftwareVersion = v
	} else {
		b.logger.Warn("identity read failed", "field", "software_version", "error", err)
	}
	if v, err := b.device.HardwareVersion(); err == nil {
		id.HardwareVersion = v
	} else {
		b.logger.Warn("identity read failed", "field", "hardware_version", "error", err)
	}
	if v, err := b.device.SerialNumber(); err == nil {
		id.SerialNumber = fmt.Sprintf("%d", v)
	} else {
		b.logger.Warn("identity read failed", "field", "serial_number", "error", err)
	}
	if v, err := b.device.ControllerType(); err == nil {
		id.ControllerType = v
	} else {
		b.logger.Warn("identity read failed", "field", "controller_type", "error", err)
	}
	if v, err := b.device.VoltageRating(); err == nil {
		id.VoltageRating = &v
	} else {
		b.logger.Warn("identity read failed", "field", "voltage_rating", "error", err)
	}
	if v, err := b.device.CurrentRating(); err == nil {
		id.CurrentRating = &v
	} else {
		b.logger.Warn("identity read failed", "field", "current_rating", "error", err)
	}
	if v, err := b.device.DischargeRating(); err == nil {
		id.DischargeRating = &v
	} else {
		b.logger.Warn("identity read failed", "field", "discharge_rating", "error", err)
	}

	b.identity = id
	b.logger.Info("device identity loaded",
		"model", id.Model,
		"software_version", id.SoftwareVersion,
		"serial_number", id.SerialNumber)
}

// StatusMessage renders the retained status document for the given
// online state. It never fails: the payload is assembled from the
// identity captured at connect time.
func (b *Bridge) StatusMessage(online bool) []byte {
	msg := b.identity
	msg.Online = online

	payload, err := json.Marshal(msg)
	if err != nil {
		// Marshalling a flat struct of strings and floats cannot fail;
		// keep a minimal fallback so the status topic is never empty.
		return []byte(fmt.Sprintf(`{"client":%q,"online":%t}`, b.cfg.MQTT.Broker.ClientID, online))
	}
	return payload
}

// PublishData polls the device and publishes one telemetry record.
// A record with every field missing is still published; consumers see
// the timestamp advance even when the bus is fully down.
func (b *Bridge) PublishData() error {
	rec := b.device.GetData()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding telemetry record: %w", err)
	}

	if err := b.session.PublishData(payload); err != nil {
		return fmt.Errorf("publishing telemetry record: %w", err)
	}

	if b.sink != nil {
		b.sink.WriteTelemetry(b.cfg.MQTT.Broker.ClientID, rec.Fields(), rec.Timestamp)
	}

	return nil
}

// Run publishes one record immediately, then keeps publishing at the
// configured interval until ctx is cancelled. Publish failures are
// logged and the schedule continues; the next tick retries naturally.
func (b *Bridge) Run(ctx context.Context) {
	tick := func(context.Context) {
		if err := b.PublishData(); err != nil {
			b.logger.Error("publish tick failed", "error", err)
		}
	}

	tick(ctx)

	scheduler := NewScheduler(b.cfg.PublishInterval(), tick, b.logger)
	scheduler.Run(ctx)
}
