package renogy

import (
	"errors"
	"math"
	"testing"
)

// =============================================================================
// ASCII decoding
// =============================================================================

func TestDecodeASCII(t *testing.T) {
	// " RNG-CTRL-RVR40 " as 8 big-endian words.
	words := []uint16{0x2052, 0x4e47, 0x2d43, 0x5452, 0x4c2d, 0x5256, 0x5234, 0x3020}

	got, err := decodeASCII(words, 8)
	if err != nil {
		t.Fatalf("decodeASCII() error = %v", err)
	}
	if got != " RNG-CTRL-RVR40" {
		t.Errorf("decodeASCII() = %q, want %q", got, " RNG-CTRL-RVR40")
	}
}

func TestDecodeASCIITrimsPadding(t *testing.T) {
	words := []uint16{0x4142, 0x0000, 0x2020}

	got, err := decodeASCII(words, 3)
	if err != nil {
		t.Fatalf("decodeASCII() error = %v", err)
	}
	if got != "AB" {
		t.Errorf("decodeASCII() = %q, want %q", got, "AB")
	}
}

func TestDecodeASCIIReplacesNonPrintable(t *testing.T) {
	words := []uint16{0x4101, 0x4243}

	got, err := decodeASCII(words, 2)
	if err != nil {
		t.Fatalf("decodeASCII() error = %v", err)
	}
	if got != "A?BC" {
		t.Errorf("decodeASCII() = %q, want %q", got, "A?BC")
	}
}

func TestDecodeASCIIWrongLength(t *testing.T) {
	_, err := decodeASCII([]uint16{0x4142}, 8)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("decodeASCII() error = %v, want ErrDecode", err)
	}
}

// =============================================================================
// Version decoding
// =============================================================================

func TestDecodeVersion(t *testing.T) {
	got, err := decodeVersion([]uint16{0x0102, 0x0304})
	if err != nil {
		t.Fatalf("decodeVersion() error = %v", err)
	}
	if got != "V2.3.4" {
		t.Errorf("decodeVersion() = %q, want %q", got, "V2.3.4")
	}
}

func TestDecodeVersionWrongLength(t *testing.T) {
	_, err := decodeVersion([]uint16{0x0102})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("decodeVersion() error = %v, want ErrDecode", err)
	}
}

// =============================================================================
// Numeric decoding
// =============================================================================

func TestDecodeUint32(t *testing.T) {
	got, err := decodeUint32([]uint16{0x0001, 0x86a0})
	if err != nil {
		t.Fatalf("decodeUint32() error = %v", err)
	}
	if got != 100000 {
		t.Errorf("decodeUint32() = %d, want 100000", got)
	}
}

func TestScaleUnsigned(t *testing.T) {
	if got := scaleUnsigned(250, 0.1); math.Abs(got-25.0) > 1e-9 {
		t.Errorf("scaleUnsigned(250, 0.1) = %v, want 25.0", got)
	}
	if got := scaleUnsigned(142, 0.01); math.Abs(got-1.42) > 1e-9 {
		t.Errorf("scaleUnsigned(142, 0.01) = %v, want 1.42", got)
	}
}

func TestScaleSigned(t *testing.T) {
	if got := scaleSigned(0xFFF6, 1); got != -10 {
		t.Errorf("scaleSigned(0xFFF6, 1) = %v, want -10", got)
	}
}

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		name string
		b    byte
		want float64
	}{
		{"positive", 0x19, 25},
		{"negative", 0x99, -25},
		{"zero", 0x00, 0},
		{"negative zero", 0x80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeTemperature(tt.b); got != tt.want {
				t.Errorf("decodeTemperature(0x%02X) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Register map invariants
// =============================================================================

func TestRegisterWordCounts(t *testing.T) {
	for _, spec := range allRegisters {
		want := wordsFor(spec.Method)
		if want == 0 {
			continue
		}
		if spec.Words != want {
			t.Errorf("register %s: Words = %d, method requires %d", spec.Name, spec.Words, want)
		}
	}
}

func TestRegisterAddressesUnique(t *testing.T) {
	seen := make(map[uint16]string)
	for _, spec := range allRegisters {
		if prev, ok := seen[spec.Address]; ok {
			t.Errorf("register %s reuses address 0x%04X of %s", spec.Name, spec.Address, prev)
		}
		seen[spec.Address] = spec.Name
	}
}
