// Package renogy reads telemetry and identity data from Renogy solar
// charge controllers over Modbus RTU.
//
// The package splits into three layers:
//
//   - Transport: a serial RTU connection addressed to one device,
//     returning raw register words.
//   - Decoders: pure functions mapping register words to typed values
//     (scaled readings, ASCII strings, version triplets).
//   - Controller: named getters over the register map, plus GetData,
//     which assembles one TelemetryRecord per tick with per-field
//     failure isolation.
//
// Register addresses and scale factors follow the vendor's Modbus
// documentation for the Rover, Wanderer and Adventurer families.
package renogy
