package renogy

// DecodeMethod identifies how a register payload becomes a typed value.
type DecodeMethod int

const (
	// BigEndianASCII renders each word as two characters, high byte
	// first, with trailing NUL/space padding stripped.
	BigEndianASCII DecodeMethod = iota

	// ScaledUnsigned multiplies a single unsigned word by the scale
	// factor to produce the physical unit.
	ScaledUnsigned

	// ScaledSigned is ScaledUnsigned with two's-complement
	// interpretation of the word.
	ScaledSigned

	// VersionTriplet renders two words as "V{b1}.{b2}.{b3}",
	// discarding the first of the four bytes.
	VersionTriplet

	// DoubleWordUnsigned concatenates two words into one big-endian
	// 32-bit value (serial numbers).
	DoubleWordUnsigned
)

// RegisterSpec describes one named holding register on the controller.
type RegisterSpec struct {
	Name    string
	Address uint16
	Words   uint16
	Method  DecodeMethod
	Scale   float64
	Unit    string
}

// wordsFor returns the word count a decode method requires.
// Zero means the method accepts any length (declared per field).
func wordsFor(m DecodeMethod) uint16 {
	switch m {
	case ScaledUnsigned, ScaledSigned:
		return 1
	case VersionTriplet, DoubleWordUnsigned:
		return 2
	default:
		return 0
	}
}

// Holding register map for Renogy charge controllers (Rover, Wanderer,
// Adventurer). Addresses and scaling follow the vendor's Modbus
// documentation: voltages in tenths of a volt, currents in hundredths
// of an amp, powers in whole watts.
var (
	// 0x000A packs the rated voltage (high byte, V) and rated charge
	// current (low byte, A); 0x000B packs the rated discharge current
	// (high byte, A) and product type (low byte).
	regRatings       = RegisterSpec{Name: "ratings", Address: 0x000A, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: ""}
	regDischargeType = RegisterSpec{Name: "discharge_and_type", Address: 0x000B, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: ""}

	regModel           = RegisterSpec{Name: "model", Address: 0x000C, Words: 8, Method: BigEndianASCII, Scale: 0, Unit: ""}
	regSoftwareVersion = RegisterSpec{Name: "software_version", Address: 0x0014, Words: 2, Method: VersionTriplet, Scale: 0, Unit: ""}
	regHardwareVersion = RegisterSpec{Name: "hardware_version", Address: 0x0016, Words: 2, Method: VersionTriplet, Scale: 0, Unit: ""}
	regSerialNumber    = RegisterSpec{Name: "serial_number", Address: 0x0018, Words: 2, Method: DoubleWordUnsigned, Scale: 0, Unit: ""}

	regBatteryStateOfCharge = RegisterSpec{Name: "battery_state_of_charge", Address: 0x0100, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "%"}
	regBatteryVoltage       = RegisterSpec{Name: "battery_voltage", Address: 0x0101, Words: 1, Method: ScaledUnsigned, Scale: 0.1, Unit: "V"}

	// 0x0103 packs the controller temperature (high byte) and battery
	// temperature (low byte), each sign-bit encoded.
	regTemperatures = RegisterSpec{Name: "temperatures", Address: 0x0103, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "°C"}

	regLoadVoltage = RegisterSpec{Name: "load_voltage", Address: 0x0104, Words: 1, Method: ScaledUnsigned, Scale: 0.1, Unit: "V"}
	regLoadCurrent = RegisterSpec{Name: "load_current", Address: 0x0105, Words: 1, Method: ScaledUnsigned, Scale: 0.01, Unit: "A"}
	regLoadPower   = RegisterSpec{Name: "load_power", Address: 0x0106, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "W"}

	regSolarVoltage = RegisterSpec{Name: "solar_voltage", Address: 0x0107, Words: 1, Method: ScaledUnsigned, Scale: 0.1, Unit: "V"}
	regSolarCurrent = RegisterSpec{Name: "solar_current", Address: 0x0108, Words: 1, Method: ScaledUnsigned, Scale: 0.01, Unit: "A"}
	regSolarPower   = RegisterSpec{Name: "solar_power", Address: 0x0109, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "W"}

	regMinBatteryVoltageToday = RegisterSpec{Name: "minimum_battery_voltage_today", Address: 0x010B, Words: 1, Method: ScaledUnsigned, Scale: 0.1, Unit: "V"}
	regMaxBatteryVoltageToday = RegisterSpec{Name: "maximum_battery_voltage_today", Address: 0x010C, Words: 1, Method: ScaledUnsigned, Scale: 0.1, Unit: "V"}
	regMaxSolarPowerToday     = RegisterSpec{Name: "maximum_solar_power_today", Address: 0x010F, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "W"}
	regMinSolarPowerToday     = RegisterSpec{Name: "minimum_solar_power_today", Address: 0x0110, Words: 1, Method: ScaledUnsigned, Scale: 1, Unit: "W"}
)

// allRegisters lists every spec, for invariant checks.
var allRegisters = []RegisterSpec{
	regRatings, regDischargeType, regModel,
	regSoftwareVersion, regHardwareVersion, regSerialNumber,
	regBatteryStateOfCharge, regBatteryVoltage, regTemperatures,
	regLoadVoltage, regLoadCurrent, regLoadPower,
	regSolarVoltage, regSolarCurrent, regSolarPower,
	regMinBatteryVoltageToday, regMaxBatteryVoltageToday,
	regMaxSolarPowerToday, regMinSolarPowerToday,
}
