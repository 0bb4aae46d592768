package hasher

import (
	"math/bits"
	"math/rand"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    uint64
		b    uint64
		want int
	}{
		{"identical", 0xDEADBEEF12345678, 0xDEADBEEF12345678, 0},
		{"one bit", 0xFFFFFFFFFFFFFFFE, 0xFFFFFFFFFFFFFFFF, 1},
		{"completely different", 0, 0xFFFFFFFFFFFFFFFF, 64},
		{"halves swapped", 0x00000000FFFFFFFF, 0xFFFFFFFF00000000, 64},
		{"zero against sign bit", 0, 0x8000000000000000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []Mode{ModeHex, ModeDecimal} {
				got, err := Distance(Encode(tt.a, mode), Encode(tt.b, mode), mode)
				if err != nil {
					t.Fatalf("Distance failed in %s mode: %v", mode, err)
				}
				if got != tt.want {
					t.Errorf("Distance(%#x, %#x) in %s mode = %d; want %d",
						tt.a, tt.b, mode, got, tt.want)
				}
			}
		})
	}
}

func TestDistanceSymmetryAndBound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a, b := rng.Uint64(), rng.Uint64()
		ab, err := Distance(Encode(a, ModeHex), Encode(b, ModeHex), ModeHex)
		if err != nil {
			t.Fatalf("Distance failed: %v", err)
		}
		ba, err := Distance(Encode(b, ModeHex), Encode(a, ModeHex), ModeHex)
		if err != nil {
			t.Fatalf("Distance failed: %v", err)
		}
		if ab != ba {
			t.Fatalf("distance not symmetric for %#x, %#x: %d vs %d", a, b, ab, ba)
		}
		if ab < 0 || ab > 64 {
			t.Fatalf("distance %d out of [0, 64] for %#x, %#x", ab, a, b)
		}
	}
}

func TestDistanceBitFlips(t *testing.T) {
	// Flipping exactly k bits must yield a distance of exactly k.
	rng := rand.New(rand.NewSource(2))
	for k := 0; k <= 64; k++ {
		original := rng.Uint64()
		flipped := original
		for _, pos := range rng.Perm(64)[:k] {
			flipped ^= uint64(1) << uint(pos)
		}

		got, err := Distance(Encode(original, ModeHex), Encode(flipped, ModeHex), ModeHex)
		if err != nil {
			t.Fatalf("Distance failed: %v", err)
		}
		if got != k {
			t.Errorf("flipped %d bits of %#x but distance = %d", k, original, got)
		}
	}
}

func TestDistanceMalformedOperand(t *testing.T) {
	if _, err := Distance("not-a-hash", "0", ModeHex); err == nil {
		t.Error("expected error for malformed first operand")
	}
	if _, err := Distance("0", "not-a-hash", ModeHex); err == nil {
		t.Error("expected error for malformed second operand")
	}
}

func TestHammingSlowMatchesOnesCount(t *testing.T) {
	// The bit-by-bit reference and the popcount fast path must agree over
	// the full range; spot-check boundaries plus a random sweep.
	pairs := [][2]uint64{
		{0, 0},
		{0, 0xFFFFFFFFFFFFFFFF},
		{0x8000000000000000, 0},
		{0x8000000000000001, 0x7FFFFFFFFFFFFFFE},
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		pairs = append(pairs, [2]uint64{rng.Uint64(), rng.Uint64()})
	}

	for _, p := range pairs {
		slow := hammingSlow(p[0], p[1])
		fast := bits.OnesCount64(p[0] ^ p[1])
		if slow != fast {
			t.Fatalf("popcount mismatch for %#x, %#x: slow=%d fast=%d", p[0], p[1], slow, fast)
		}
	}
}

func BenchmarkDistance(b *testing.B) {
	a := Encode(0xDEADBEEF12345678, ModeHex)
	c := Encode(0xCAFEBABE87654321, ModeHex)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Distance(a, c, ModeHex)
	}
}
