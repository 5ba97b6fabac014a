package renogy

import (
	"bytes"
	"fmt"
)

// asciiPlaceholder replaces non-printable bytes in string registers.
// A damaged read still yields a best-effort string rather than an
// error; only a wrong word count fails the decode.
const asciiPlaceholder = '?'

// decodeASCII interprets words as ASCII text, two characters per word,
// high byte first. Trailing NUL and space padding is stripped.
func decodeASCII(words []uint16, want int) (string, error) {
	if len(words) != want {
		return "", fmt.Errorf("%w: ascii field: got %d words, want %d", ErrDecode, len(words), want)
	}

	raw := make([]byte, 0, len(words)*2)
	for _, w := range words {
		raw = append(raw, byte(w>>8), byte(w))
	}
	raw = bytes.TrimRight(raw, "\x00 ")

	out := make([]byte, len(raw))
	for i, c := range raw {
		if c < 0x20 || c > 0x7e {
			out[i] = asciiPlaceholder
			continue
		}
		out[i] = c
	}

	return string(out), nil
}

// versionWords is the exact word count a version register occupies.
const versionWords = 2

// decodeVersion renders two words as a dotted version string.
//
// The four bytes are taken in big-endian order; the first is reserved
// by the protocol and discarded. Words [0x0102, 0x0304] decode to
// "V2.3.4".
func decodeVersion(words []uint16) (string, error) {
	if len(words) != versionWords {
		return "", fmt.Errorf("%w: version field: got %d words, want %d", ErrDecode, len(words), versionWords)
	}

	major := byte(words[0])
	minor := byte(words[1] >> 8)
	patch := byte(words[1])

	return fmt.Sprintf("V%d.%d.%d", major, minor, patch), nil
}

// decodeUint32 concatenates two words big-endian.
func decodeUint32(words []uint16) (uint32, error) {
	if len(words) != 2 {
		return 0, fmt.Errorf("%w: double-word field: got %d words, want 2", ErrDecode, len(words))
	}
	return uint32(words[0])<<16 | uint32(words[1]), nil
}

// scaleUnsigned converts a raw word to its physical unit.
// E.g. raw 250 at scale 0.1 is 25.0 volts.
func scaleUnsigned(word uint16, scale float64) float64 {
	return float64(word) * scale
}

// scaleSigned is scaleUnsigned with two's-complement interpretation.
func scaleSigned(word uint16, scale float64) float64 {
	return float64(int16(word)) * scale
}

func highByte(word uint16) byte {
	return byte(word >> 8)
}

func lowByte(word uint16) byte {
	return byte(word)
}

// decodeTemperature interprets one byte of the temperature register.
// Bit 7 is the sign, the low seven bits the magnitude in °C.
func decodeTemperature(b byte) float64 {
	v := float64(b & 0x7f)
	if b&0x80 != 0 {
		return -v
	}
	return v
}
