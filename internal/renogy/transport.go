package renogy

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// TransportConfig is the serial bus configuration for one controller.
type TransportConfig struct {
	Port       string
	BusAddress uint8
	BaudRate   int
	Timeout    time.Duration
}

// Transport is a Modbus RTU connection to one addressed device.
// It satisfies RegisterReader. Not safe for concurrent use; the bus
// is half-duplex and callers serialise reads themselves.
type Transport struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// Dial opens the serial port and prepares an RTU client addressed to
// cfg.BusAddress. The port is held open until Close.
func Dial(cfg TransportConfig) (*Transport, error) {
	handler := modbus.NewRTUClientHandler(cfg.Port)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = cfg.BusAddress
	handler.Timeout = cfg.Timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrTransport, cfg.Port, err)
	}

	return &Transport{
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

// ReadRegisters reads quantity holding registers starting at address.
func (t *Transport) ReadRegisters(address, quantity uint16) ([]uint16, error) {
	raw, err := t.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: register 0x%04X: %v", ErrTransport, address, err)
	}
	if len(raw) != int(quantity)*2 {
		return nil, fmt.Errorf("%w: register 0x%04X: got %d bytes, want %d", ErrTransport, address, len(raw), quantity*2)
	}

	words := make([]uint16, quantity)
	for i := range words {
		words[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return words, nil
}

// Close releases the serial port.
func (t *Transport) Close() error {
	return t.handler.Close()
}
