package renogy

import "time"

// TelemetryRecord is one tick's decoded telemetry.
//
// A record is produced fresh on every scheduler tick and never mutated
// after construction. Fields that could not be read are nil and omitted
// from the JSON encoding; the timestamp is always present.
type TelemetryRecord struct {
	Timestamp time.Time `json:"timestamp"`

	SolarVoltage *float64 `json:"solar_voltage,omitempty"`
	SolarCurrent *float64 `json:"solar_current,omitempty"`
	SolarPower   *float64 `json:"solar_power,omitempty"`

	LoadVoltage *float64 `json:"load_voltage,omitempty"`
	LoadCurrent *float64 `json:"load_current,omitempty"`
	LoadPower   *float64 `json:"load_power,omitempty"`

	BatteryVoltage       *float64 `json:"battery_voltage,omitempty"`
	BatteryStateOfCharge *float64 `json:"battery_state_of_charge,omitempty"`
	BatteryTemperature   *float64 `json:"battery_temperature,omitempty"`

	ControllerTemperature *float64 `json:"controller_temperature,omitempty"`

	MaximumSolarPowerToday     *float64 `json:"maximum_solar_power_today,omitempty"`
	MinimumSolarPowerToday     *float64 `json:"minimum_solar_power_today,omitempty"`
	MaximumBatteryVoltageToday *float64 `json:"maximum_battery_voltage_today,omitempty"`
	MinimumBatteryVoltageToday *float64 `json:"minimum_battery_voltage_today,omitempty"`
}

// Fields returns the present fields as a name-to-value map, for sinks
// that want flat numeric series rather than the JSON document.
func (r TelemetryRecord) Fields() map[string]float64 {
	fields := make(map[string]float64)
	add := func(name string, v *float64) {
		if v != nil {
			fields[name] = *v
		}
	}

	add("solar_voltage", r.SolarVoltage)
	add("solar_current", r.SolarCurrent)
	add("solar_power", r.SolarPower)
	add("load_voltage", r.LoadVoltage)
	add("load_current", r.LoadCurrent)
	add("load_power", r.LoadPower)
	add("battery_voltage", r.BatteryVoltage)
	add("battery_state_of_charge", r.BatteryStateOfCharge)
	add("battery_temperature", r.BatteryTemperature)
	add("controller_temperature", r.ControllerTemperature)
	add("maximum_solar_power_today", r.MaximumSolarPowerToday)
	add("minimum_solar_power_today", r.MinimumSolarPowerToday)
	add("maximum_battery_voltage_today", r.MaximumBatteryVoltageToday)
	add("minimum_battery_voltage_today", r.MinimumBatteryVoltageToday)

	return fields
}
