package hasher

import (
	"errors"
	"testing"
)

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		name string
		raw  uint64
		want string
	}{
		{"zero", 0, "0"},
		{"small value keeps minimal width", 0xab, "ab"},
		{"lower case digits", 0xDEADBEEF12345678, "deadbeef12345678"},
		{"top bit set", 0x8000000000000001, "8000000000000001"},
		{"all bits set", 0xFFFFFFFFFFFFFFFF, "ffffffffffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.raw, ModeHex); got != tt.want {
				t.Errorf("Encode(%#x, hex) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  uint64
		want string
	}{
		{"zero", 0, "0"},
		{"positive", 12345, "12345"},
		{"sign bit renders negative", 0x8000000000000000, "-9223372036854775808"},
		{"all bits set renders -1", 0xFFFFFFFFFFFFFFFF, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.raw, ModeDecimal); got != tt.want {
				t.Errorf("Encode(%#x, decimal) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Representative sample of the 64-bit range, including both extremes,
	// the sign-bit boundary and values whose top nibble is exactly 8.
	values := []uint64{
		0,
		1,
		0xab,
		0x7FFFFFFFFFFFFFFF,
		0x8000000000000000,
		0x8000000000000001,
		0x8123456789abcdef,
		0xDEADBEEF12345678,
		0xFFFFFFFFFFFFFFFF,
	}

	for _, mode := range []Mode{ModeHex, ModeDecimal} {
		for _, v := range values {
			got, err := Decode(Encode(v, mode), mode)
			if err != nil {
				t.Fatalf("Decode(Encode(%#x, %s)) failed: %v", v, mode, err)
			}
			if got != v {
				t.Errorf("round trip in %s mode: got %#x, want %#x", mode, got, v)
			}
		}
	}
}

func TestDecodeFullWidthHex(t *testing.T) {
	// A 16-digit hex hash with its top nibble above 8 must survive decoding
	// as the exact unsigned value, not a truncated or mis-signed one.
	got, err := Decode("8000000000000001", ModeHex)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != 9223372036854775809 {
		t.Errorf("Decode(8000000000000001) = %d; want 9223372036854775809", got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode Mode
	}{
		{"empty hex", "", ModeHex},
		{"non-hex characters", "xyz123", ModeHex},
		{"hex prefix rejected", "0xff", ModeHex},
		{"17 hex digits overflow", "10000000000000000", ModeHex},
		{"empty decimal", "", ModeDecimal},
		{"not a number", "12a4", ModeDecimal},
		{"decimal above int64 range", "9223372036854775808", ModeDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.in, tt.mode); !errors.Is(err, ErrMalformedHash) {
				t.Errorf("Decode(%q, %s) error = %v; want ErrMalformedHash", tt.in, tt.mode, err)
			}
		})
	}
}
