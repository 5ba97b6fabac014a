package renogy

import "errors"

// Error kinds for controller reads.
// Use errors.Is() to distinguish bus faults from protocol faults.
var (
	// ErrTransport indicates a bus-level failure: timeout, checksum
	// mismatch, framing error, or a short response.
	ErrTransport = errors.New("renogy: transport failure")

	// ErrDecode indicates a register payload that does not match the
	// expected shape for its field.
	ErrDecode = errors.New("renogy: decode failure")
)
