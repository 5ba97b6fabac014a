// Package logging provides structured logging for the bridge.
//
// It wraps Go's log/slog so every component logs through the same
// handler, with the service name and version stamped on each entry.
//
// Configured via config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log broker credentials or tokens.
package logging
