// Package config loads and validates the bridge configuration.
//
// Configuration comes from a YAML file, with defaults applied first and
// RENOGY_* environment variables applied last. A .env file in the
// working directory is loaded before the environment is read, so
// credentials can be kept out of the YAML file.
//
//	mqtt:
//	  broker:
//	    host: "broker.local"
//	    port: 1883
//	    client_id: "renogy-mqtt"
//	  qos: 1
//	device:
//	  port: "/dev/ttyUSB0"   # empty = auto-discover
//	  bus_address: 1          # 0 = auto-discover
//	publish:
//	  interval: 60
//
// Validation failures are fatal at startup; the bridge never enters the
// publish loop with an invalid configuration.
package config
