// Package influxdb archives telemetry records to InfluxDB v2.
//
// The sink is optional: when disabled in configuration the bridge
// publishes to MQTT only. Writes are batched and non-blocking, so a
// slow or absent InfluxDB server never stalls the polling loop.
package influxdb
