package hasher

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedHash reports a string that is not a valid encoding for the
// requested mode. Use errors.Is to detect it under wrapping.
var ErrMalformedHash = errors.New("malformed hash")

// Encode renders a raw 64-bit fingerprint in the given mode.
//
// Hex mode produces the minimal-length lower-case hex digits with no 0x
// prefix ("0" for zero). Decimal mode prints the value through its signed
// 64-bit bit pattern, so fingerprints with the top bit set come out
// negative. Both forms match fingerprints persisted by earlier versions of
// the tool, which stored raw values in signed 64-bit columns.
func Encode(raw uint64, mode Mode) string {
	if mode == ModeDecimal {
		return strconv.FormatInt(int64(raw), 10)
	}
	return strconv.FormatUint(raw, 16)
}

// Decode parses an encoded fingerprint back to its raw 64-bit value.
// The round trip Decode(Encode(x, m), m) == x holds for every x.
func Decode(s string, mode Mode) (uint64, error) {
	if mode == ModeDecimal {
		// The decimal form carries the signed bit pattern, not a
		// magnitude; reinterpret rather than range-check.
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a decimal hash", ErrMalformedHash, s)
		}
		return uint64(v), nil
	}

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a hex hash", ErrMalformedHash, s)
	}
	return v, nil
}
