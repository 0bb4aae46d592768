package hasher

import "math/bits"

// Distance decodes two encoded fingerprints and returns the number of bit
// positions (out of 64) where they differ. The result is in [0, 64].
//
// Both arguments must be encoded under the same mode; comparing a hex hash
// against a decimal hash is a caller error the function cannot detect, and
// yields a meaningless distance.
func Distance(a, b string, mode Mode) (int, error) {
	ra, err := Decode(a, mode)
	if err != nil {
		return 0, err
	}
	rb, err := Decode(b, mode)
	if err != nil {
		return 0, err
	}
	return bits.OnesCount64(ra ^ rb), nil
}

// Distance compares two fingerprints encoded under the instance mode. It is
// directly usable with persisted hashes, without re-decoding any image.
func (h *Hasher) Distance(a, b string) (int, error) {
	return Distance(a, b, h.mode)
}

// hammingSlow counts differing bits one position at a time over the whole
// 64-bit width. bits.OnesCount64 on the xor is the production path; this
// reference exists so tests can pin the two against each other.
func hammingSlow(a, b uint64) int {
	count := 0
	for i := uint(0); i < 64; i++ {
		mask := uint64(1) << i
		if a&mask != b&mask {
			count++
		}
	}
	return count
}
