package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
// Use errors.Is() to check error types.
var (
	// ErrDisabled means the sink is switched off in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrNotConnected means an operation was attempted before Connect
	// or after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed means the server could not be reached or
	// reported itself unhealthy.
	ErrConnectionFailed = errors.New("influxdb: connection failed")
)
