package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goburrow/modbus"
)

var (
	// ErrNoDevice means no candidate serial adapter was found.
	ErrNoDevice = errors.New("discovery: no serial device found")

	// ErrMultipleDevices means more than one adapter matched and the
	// port must be configured explicitly.
	ErrMultipleDevices = errors.New("discovery: multiple serial devices found")

	// ErrNoResponder means no bus address answered the probe.
	ErrNoResponder = errors.New("discovery: no device responded on any bus address")

	// ErrMultipleResponders means more than one bus address answered
	// and the address must be configured explicitly.
	ErrMultipleResponders = errors.New("discovery: multiple devices responded")
)

// Bus address range defined by the Modbus specification.
const (
	minBusAddress = 1
	maxBusAddress = 247
)

// probeTimeout bounds each address probe. A silent address costs one
// timeout, so scanning the full range takes up to ~250 × this.
const probeTimeout = 200 * time.Millisecond

// Logger is the logging interface discovery needs.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// FindSerialPort locates the USB serial adapter the controller hangs
// off. Stable /dev/serial/by-id links are preferred; raw /dev/ttyUSB*
// nodes are the fallback. Exactly one candidate must match.
func FindSerialPort(logger Logger) (string, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	byID, err := filepath.Glob("/dev/serial/by-id/*")
	if err != nil {
		return "", fmt.Errorf("discovery: globbing /dev/serial/by-id: %w", err)
	}
	if port, err := selectPort(byID); err == nil {
		logger.Info("discovered serial port", "port", port)
		return port, nil
	} else if errors.Is(err, ErrMultipleDevices) {
		return "", err
	}

	ttys, err := filepath.Glob("/dev/ttyUSB*")
	if err != nil {
		return "", fmt.Errorf("discovery: globbing /dev/ttyUSB*: %w", err)
	}
	port, err := selectPort(ttys)
	if err != nil {
		return "", err
	}
	logger.Info("discovered serial port", "port", port)
	return port, nil
}

// selectPort applies the exactly-one rule to a candidate list. FTDI
// adapters are preferred when the list carries vendor names, since
// Renogy's own RS232 cable uses an FTDI chip.
func selectPort(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoDevice
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	var ftdi []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), "ftdi") {
			ftdi = append(ftdi, c)
		}
	}
	if len(ftdi) == 1 {
		return ftdi[0], nil
	}

	return "", fmt.Errorf("%w: %s", ErrMultipleDevices, strings.Join(candidates, ", "))
}

// probeFunc attempts one read on one bus address and reports whether
// a device answered.
type probeFunc func(address uint8) bool

// FindBusAddress scans the whole Modbus address range on port and
// returns the single address that answers a register read; zero or
// several responders fail the discovery. One serial handler is reused
// across the scan; only the slave id changes per probe.
func FindBusAddress(port string, baudRate int, logger Logger) (uint8, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	handler := modbus.NewRTUClientHandler(port)
	handler.BaudRate = baudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.Timeout = probeTimeout

	if err := handler.Connect(); err != nil {
		return 0, fmt.Errorf("discovery: opening %s: %w", port, err)
	}
	defer handler.Close()

	client := modbus.NewClient(handler)
	probe := func(address uint8) bool {
		handler.SlaveId = address
		// The model register is present on every supported controller.
		_, err := client.ReadHoldingRegisters(0x000C, 8)
		if err != nil {
			logger.Debug("no response", "address", address)
			return false
		}
		return true
	}

	address, err := scanAddresses(probe)
	if err != nil {
		return 0, err
	}
	logger.Info("discovered bus address", "address", address)
	return address, nil
}

// scanAddresses walks the full address range with the supplied probe
// and applies the exactly-one rule to the responders. Stopping at the
// first hit would mask a second device on the bus.
func scanAddresses(probe probeFunc) (uint8, error) {
	var responders []uint8
	for address := minBusAddress; address <= maxBusAddress; address++ {
		if probe(uint8(address)) {
			responders = append(responders, uint8(address))
		}
	}

	switch len(responders) {
	case 0:
		return 0, ErrNoResponder
	case 1:
		return responders[0], nil
	default:
		list := make([]string, len(responders))
		for i, r := range responders {
			list[i] = strconv.Itoa(int(r))
		}
		return 0, fmt.Errorf("%w: addresses %s", ErrMultipleResponders, strings.Join(list, ", "))
	}
}
