package sequencer

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789abcdef"

// EmptyRow is the encoding of a row with nothing armed
const EmptyRow = "0000"

// Encode packs bits into lowercase hex, four bits per digit.
// Bit 0 is the most significant bit of the first digit. A trailing
// partial nibble is padded with zeros on its low-order side.
func Encode(bits []bool) string {
	var out strings.Builder
	out.Grow((len(bits) + 3) / 4)
	for i := 0; i < len(bits); i += 4 {
		var nibble byte
		for b := 0; b < 4; b++ {
			nibble <<= 1
			if i+b < len(bits) && bits[i+b] {
				nibble |= 1
			}
		}
		out.WriteByte(hexDigits[nibble])
	}
	return out.String()
}

// EncodeSteps encodes one row; the result is always 4 characters
func EncodeSteps(s Steps) string {
	return Encode(s[:])
}

// Decode expands every hex digit into 4 bits, most significant first.
// An empty string decodes to an empty row.
func Decode(hex string) ([]bool, error) {
	if hex == "" {
		return make([]bool, NumSteps), nil
	}
	bits := make([]bool, 0, 4*len(hex))
	for i := 0; i < len(hex); i++ {
		nibble, ok := hexValue(hex[i])
		if !ok {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidEncoding, hex[i], i)
		}
		for b := 3; b >= 0; b-- {
			bits = append(bits, nibble&(1<<b) != 0)
		}
	}
	return bits, nil
}

// DecodeSteps decodes a single row. The input must describe exactly
// NumSteps bits, i.e. 4 hex digits, or be empty.
func DecodeSteps(hex string) (Steps, error) {
	var s Steps
	bits, err := Decode(hex)
	if err != nil {
		return s, err
	}
	if len(bits) != NumSteps {
		return s, fmt.Errorf("%w: row %q has %d bits, want %d", ErrInvalidEncoding, hex, len(bits), NumSteps)
	}
	copy(s[:], bits)
	return s, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
