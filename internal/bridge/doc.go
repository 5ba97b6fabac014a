// Package bridge composes the controller session, the MQTT session
// and the optional InfluxDB sink into the polling loop.
//
// The bridge owns the status document: it captures the device identity
// before the MQTT connect so the broker's stored will, the birth
// message and the farewell all carry the same identity fields. The
// scheduler anchors ticks to deadlines rather than completion times,
// keeping readings evenly spaced under slow polls.
package bridge
