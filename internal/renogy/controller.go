package renogy

import (
	"fmt"
	"time"
)

// RegisterReader reads holding registers from the bus.
// Implemented by Transport and by test fakes.
type RegisterReader interface {
	ReadRegisters(address, quantity uint16) ([]uint16, error)
}

// Logger is the logging interface the controller session needs.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Controller is a session with one addressed charge controller.
//
// Each getter performs one register read and one decode; nothing is
// retried or cached here. Retry policy belongs to the caller: a
// failed read on this tick will simply be attempted again on the next.
type Controller struct {
	reader RegisterReader
	logger Logger
}

// NewController wraps a register transport addressed to one device.
func NewController(reader RegisterReader) *Controller {
	return &Controller{
		reader: reader,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger used for per-field read failures.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

func (c *Controller) read(spec RegisterSpec) ([]uint16, error) {
	words, err := c.reader.ReadRegisters(spec.Address, spec.Words)
	if err != nil {
		return nil, fmt.Errorf("reading %s (register 0x%04X): %w", spec.Name, spec.Address, err)
	}
	return words, nil
}

// readScaled reads a single-word register and applies its scale factor.
func (c *Controller) readScaled(spec RegisterSpec) (float64, error) {
	words, err := c.read(spec)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, spec.Name, len(words))
	}
	if spec.Method == ScaledSigned {
		return scaleSigned(words[0], spec.Scale), nil
	}
	return scaleUnsigned(words[0], spec.Scale), nil
}

// =============================================================================
// Telemetry getters
// =============================================================================

// SolarVoltage returns the panel voltage in volts.
func (c *Controller) SolarVoltage() (float64, error) {
	return c.readScaled(regSolarVoltage)
}

// SolarCurrent returns the panel current in amps.
func (c *Controller) SolarCurrent() (float64, error) {
	return c.readScaled(regSolarCurrent)
}

// SolarPower returns the charging power in watts.
func (c *Controller) SolarPower() (float64, error) {
	return c.readScaled(regSolarPower)
}

// LoadVoltage returns the load output voltage in volts.
func (c *Controller) LoadVoltage() (float64, error) {
	return c.readScaled(regLoadVoltage)
}

// LoadCurrent returns the load output current in amps.
func (c *Controller) LoadCurrent() (float64, error) {
	return c.readScaled(regLoadCurrent)
}

// LoadPower returns the load output power in watts.
func (c *Controller) LoadPower() (float64, error) {
	return c.readScaled(regLoadPower)
}

// BatteryVoltage returns the battery voltage in volts.
func (c *Controller) BatteryVoltage() (float64, error) {
	return c.readScaled(regBatteryVoltage)
}

// BatteryStateOfCharge returns the battery charge level in percent.
func (c *Controller) BatteryStateOfCharge() (float64, error) {
	return c.readScaled(regBatteryStateOfCharge)
}

// BatteryTemperature returns the battery sensor temperature in °C.
func (c *Controller) BatteryTemperature() (float64, error) {
	words, err := c.read(regTemperatures)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regTemperatures.Name, len(words))
	}
	return decodeTemperature(lowByte(words[0])), nil
}

// ControllerTemperature returns the controller's internal temperature in °C.
func (c *Controller) ControllerTemperature() (float64, error) {
	words, err := c.read(regTemperatures)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regTemperatures.Name, len(words))
	}
	return decodeTemperature(highByte(words[0])), nil
}

// MaximumSolarPowerToday returns today's peak charging power in watts.
func (c *Controller) MaximumSolarPowerToday() (float64, error) {
	return c.readScaled(regMaxSolarPowerToday)
}

// MinimumSolarPowerToday returns today's lowest charging power in watts.
func (c *Controller) MinimumSolarPowerToday() (float64, error) {
	return c.readScaled(regMinSolarPowerToday)
}

// MaximumBatteryVoltageToday returns today's peak battery voltage in volts.
func (c *Controller) MaximumBatteryVoltageToday() (float64, error) {
	return c.readScaled(regMaxBatteryVoltageToday)
}

// MinimumBatteryVoltageToday returns today's lowest battery voltage in volts.
func (c *Controller) MinimumBatteryVoltageToday() (float64, error) {
	return c.readScaled(regMinBatteryVoltageToday)
}

// =============================================================================
// Identity getters
// =============================================================================

// Model returns the product model string.
func (c *Controller) Model() (string, error) {
	words, err := c.read(regModel)
	if err != nil {
		return "", err
	}
	return decodeASCII(words, int(regModel.Words))
}

// SoftwareVersion returns the firmware version, e.g. "V1.2.3".
func (c *Controller) SoftwareVersion() (string, error) {
	words, err := c.read(regSoftwareVersion)
	if err != nil {
		return "", err
	}
	return decodeVersion(words)
}

// HardwareVersion returns the hardware revision, e.g. "V2.0.1".
func (c *Controller) HardwareVersion() (string, error) {
	words, err := c.read(regHardwareVersion)
	if err != nil {
		return "", err
	}
	return decodeVersion(words)
}

// SerialNumber returns the controller's serial number.
func (c *Controller) SerialNumber() (uint32, error) {
	words, err := c.read(regSerialNumber)
	if err != nil {
		return 0, err
	}
	return decodeUint32(words)
}

// VoltageRating returns the rated system voltage in volts.
func (c *Controller) VoltageRating() (float64, error) {
	words, err := c.read(regRatings)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regRatings.Name, len(words))
	}
	return float64(highByte(words[0])), nil
}

// CurrentRating returns the rated charging current in amps.
func (c *Controller) CurrentRating() (float64, error) {
	words, err := c.read(regRatings)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regRatings.Name, len(words))
	}
	return float64(lowByte(words[0])), nil
}

// DischargeRating returns the rated discharge current in amps.
func (c *Controller) DischargeRating() (float64, error) {
	words, err := c.read(regDischargeType)
	if err != nil {
		return 0, err
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regDischargeType.Name, len(words))
	}
	return float64(highByte(words[0])), nil
}

// ControllerType reports whether the device is a charge controller or
// an inverter.
func (c *Controller) ControllerType() (string, error) {
	words, err := c.read(regDischargeType)
	if err != nil {
		return "", err
	}
	if len(words) != 1 {
		return "", fmt.Errorf("%w: %s: got %d words, want 1", ErrDecode, regDischargeType.Name, len(words))
	}
	switch lowByte(words[0]) {
	case 0:
		return "controller", nil
	case 1:
		return "inverter", nil
	default:
		return fmt.Sprintf("unknown (%d)", lowByte(words[0])), nil
	}
}

// =============================================================================
// Record assembly
// =============================================================================

// GetData reads all numeric telemetry in a fixed order and assembles
// one record.
//
// Per-field failure policy: a getter that fails is logged with its
// field name and cause, and the field is omitted from the record.
// Transient bus noise on one register must not blank the remaining,
// already-successful readings; the whole record is never aborted.
func (c *Controller) GetData() TelemetryRecord {
	rec := TelemetryRecord{Timestamp: time.Now().UTC()}

	readings := []struct {
		name string
		read func() (float64, error)
		dst  **float64
	}{
		{"solar_voltage", c.SolarVoltage, &rec.SolarVoltage},
		{"solar_current", c.SolarCurrent, &rec.SolarCurrent},
		{"solar_power", c.SolarPower, &rec.SolarPower},
		{"load_voltage", c.LoadVoltage, &rec.LoadVoltage},
		{"load_current", c.LoadCurrent, &rec.LoadCurrent},
		{"load_power", c.LoadPower, &rec.LoadPower},
		{"battery_voltage", c.BatteryVoltage, &rec.BatteryVoltage},
		{"battery_state_of_charge", c.BatteryStateOfCharge, &rec.BatteryStateOfCharge},
		{"battery_temperature", c.BatteryTemperature, &rec.BatteryTemperature},
		{"controller_temperature", c.ControllerTemperature, &rec.ControllerTemperature},
		{"maximum_solar_power_today", c.MaximumSolarPowerToday, &rec.MaximumSolarPowerToday},
		{"minimum_solar_power_today", c.MinimumSolarPowerToday, &rec.MinimumSolarPowerToday},
		{"maximum_battery_voltage_today", c.MaximumBatteryVoltageToday, &rec.MaximumBatteryVoltageToday},
		{"minimum_battery_voltage_today", c.MinimumBatteryVoltageToday, &rec.MinimumBatteryVoltageToday},
	}

	for _, r := range readings {
		v, err := r.read()
		if err != nil {
			c.logger.Warn("field read failed, omitting from record", "field", r.name, "error", err)
			continue
		}
		*r.dst = &v
	}

	return rec
}
