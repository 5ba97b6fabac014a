// Package discovery locates the controller when the configuration
// leaves the serial port or bus address unset.
//
// Port discovery prefers the stable /dev/serial/by-id links and falls
// back to /dev/ttyUSB* nodes. Address discovery probes the full Modbus
// address range with short timeouts. Both halves enforce an
// exactly-one rule: zero or several candidates fail the discovery
// rather than guessing.
package discovery
