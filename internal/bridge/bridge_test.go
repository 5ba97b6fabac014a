package bridge

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AeroSurvey/RenogyMQTT/internal/infrastructure/config"
	"github.com/AeroSurvey/RenogyMQTT/internal/renogy"
)

// fakeDevice answers identity and telemetry without a bus.
type fakeDevice struct {
	identityErr bool
	record      renogy.TelemetryRecord
}

func (d *fakeDevice) str(v string) (string, error) {
	if d.identityErr {
		return "", errors.New("timeout")
	}
	return v, nil
}

func (d *fakeDevice) num(v float64) (float64, error) {
	if d.identityErr {
		return 0, errors.New("timeout")
	}
	return v, nil
}

func (d *fakeDevice) Model() (string, error)           { return d.str("RNG-CTRL-RVR40") }
func (d *fakeDevice) SoftwareVersion() (string, error) { return d.str("V2.3.4") }
func (d *fakeDevice) HardwareVersion() (string, error) { return d.str("V2.0.1") }
func (d *fakeDevice) ControllerType() (string, error)  { return d.str("controller") }
func (d *fakeDevice) VoltageRating() (float64, error)  { return d.num(12) }
func (d *fakeDevice) CurrentRating() (float64, error)  { return d.num(40) }
func (d *fakeDevice) DischargeRating() (float64, error) {
	return d.num(20)
}

func (d *fakeDevice) SerialNumber() (uint32, error) {
	if d.identityErr {
		return 0, errors.New("timeout")
	}
	return 100000, nil
}

func (d *fakeDevice) GetData() renogy.TelemetryRecord {
	return d.record
}

// fakePublisher records published payloads.
type fakePublisher struct {
	connected bool
	published [][]byte
	failNext  bool
}

func (p *fakePublisher) Connect() error { p.connected = true; return nil }

func (p *fakePublisher) PublishData(payload []byte) error {
	if p.failNext {
		p.failNext = false
		return errors.New("not connected")
	}
	p.published = append(p.published, payload)
	return nil
}

func (p *fakePublisher) Disconnect() error { p.connected = false; return nil }

type sinkCall struct {
	client    string
	fields    map[string]float64
	timestamp time.Time
}

type fakeSink struct {
	calls []sinkCall
}

func (s *fakeSink) WriteTelemetry(clientName string, fields map[string]float64, timestamp time.Time) {
	s.calls = append(s.calls, sinkCall{clientName, fields, timestamp})
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.MQTT.Broker.ClientID = "garage"
	cfg.Publish.Interval = 60
	return cfg
}

func testBridge(device Device) (*Bridge, *fakePublisher) {
	b := New(testConfig(), device, nil)
	pub := &fakePublisher{}
	b.session = pub
	return b, pub
}

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// Status document
// =============================================================================

func TestStatusMessageCarriesIdentity(t *testing.T) {
	b, _ := testBridge(&fakeDevice{})
	b.loadIdentity()

	var got statusPayload
	if err := json.Unmarshal(b.StatusMessage(true), &got); err != nil {
		t.Fatalf("StatusMessage() produced invalid JSON: %v", err)
	}

	if !got.Online {
		t.Error("online = false, want true")
	}
	if got.Client != "garage" {
		t.Errorf("client = %q, want %q", got.Client, "garage")
	}
	if got.Model != "RNG-CTRL-RVR40" {
		t.Errorf("model = %q, want %q", got.Model, "RNG-CTRL-RVR40")
	}
	if got.SerialNumber != "100000" {
		t.Errorf("serial_number = %q, want %q", got.SerialNumber, "100000")
	}
	if got.VoltageRating == nil || *got.VoltageRating != 12 {
		t.Errorf("voltage_rating = %v, want 12", got.VoltageRating)
	}
}

func TestStatusMessageOffline(t *testing.T) {
	b, _ := testBridge(&fakeDevice{})
	b.loadIdentity()

	var got statusPayload
	if err := json.Unmarshal(b.StatusMessage(false), &got); err != nil {
		t.Fatalf("StatusMessage() produced invalid JSON: %v", err)
	}
	if got.Online {
		t.Error("online = true, want false")
	}
}

func TestStatusMessageUnknownIdentity(t *testing.T) {
	logger := &recordingLogger{}
	b := New(testConfig(), &fakeDevice{identityErr: true}, logger)
	b.session = &fakePublisher{}
	b.loadIdentity()

	var got statusPayload
	if err := json.Unmarshal(b.StatusMessage(true), &got); err != nil {
		t.Fatalf("StatusMessage() produced invalid JSON: %v", err)
	}

	if got.Model != "unknown" {
		t.Errorf("model = %q, want %q", got.Model, "unknown")
	}
	if got.SerialNumber != "unknown" {
		t.Errorf("serial_number = %q, want %q", got.SerialNumber, "unknown")
	}
	if got.VoltageRating != nil {
		t.Errorf("voltage_rating = %v, want omitted", *got.VoltageRating)
	}
	if logger.count("WARN") != 8 {
		t.Errorf("got %d identity warnings, want 8", logger.count("WARN"))
	}
}

// =============================================================================
// Publish path
// =============================================================================

func TestPublishData(t *testing.T) {
	device := &fakeDevice{
		record: renogy.TelemetryRecord{
			Timestamp:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			SolarVoltage:   floatPtr(18.9),
			BatteryVoltage: floatPtr(13.2),
		},
	}
	b, pub := testBridge(device)

	if err := b.PublishData(); err != nil {
		t.Fatalf("PublishData() error = %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("got %d published payloads, want 1", len(pub.published))
	}

	var got renogy.TelemetryRecord
	if err := json.Unmarshal(pub.published[0], &got); err != nil {
		t.Fatalf("published payload is invalid JSON: %v", err)
	}
	if got.SolarVoltage == nil || *got.SolarVoltage != 18.9 {
		t.Errorf("solar_voltage = %v, want 18.9", got.SolarVoltage)
	}
	if got.LoadVoltage != nil {
		t.Error("load_voltage should be omitted from the payload")
	}
}

func TestPublishDataEmptyRecordStillPublishes(t *testing.T) {
	device := &fakeDevice{
		record: renogy.TelemetryRecord{Timestamp: time.Now().UTC()},
	}
	b, pub := testBridge(device)

	if err := b.PublishData(); err != nil {
		t.Fatalf("PublishData() error = %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("got %d published payloads, want 1", len(pub.published))
	}
}

func TestPublishDataFailure(t *testing.T) {
	b, pub := testBridge(&fakeDevice{})
	pub.failNext = true

	if err := b.PublishData(); err == nil {
		t.Fatal("PublishData() error = nil, want publish failure")
	}
}

func TestPublishDataFeedsSink(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	device := &fakeDevice{
		record: renogy.TelemetryRecord{
			Timestamp:    ts,
			SolarVoltage: floatPtr(18.9),
			SolarPower:   floatPtr(27),
		},
	}
	b, _ := testBridge(device)

	sink := &fakeSink{}
	b.SetSink(sink)

	if err := b.PublishData(); err != nil {
		t.Fatalf("PublishData() error = %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("sink received %d calls, want 1", len(sink.calls))
	}
	call := sink.calls[0]
	if call.client != "garage" {
		t.Errorf("sink client = %q, want %q", call.client, "garage")
	}
	if !call.timestamp.Equal(ts) {
		t.Errorf("sink timestamp = %v, want %v", call.timestamp, ts)
	}
	if len(call.fields) != 2 {
		t.Errorf("sink received %d fields, want 2", len(call.fields))
	}
	if call.fields["solar_voltage"] != 18.9 {
		t.Errorf("sink solar_voltage = %v, want 18.9", call.fields["solar_voltage"])
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestConnectLoadsIdentityFirst(t *testing.T) {
	b, pub := testBridge(&fakeDevice{})

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !pub.connected {
		t.Error("session was not connected")
	}
	if b.identity.Model != "RNG-CTRL-RVR40" {
		t.Errorf("identity.Model = %q, want it loaded before the session connect", b.identity.Model)
	}
}

func TestDisconnect(t *testing.T) {
	b, pub := testBridge(&fakeDevice{})

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := b.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if pub.connected {
		t.Error("session still connected after Disconnect()")
	}
}
