package imageprocessor

import (
	"imagehasher/hasher"

	"github.com/corona10/goimagehash"
)

// The native fingerprinters delegate to goimagehash and run on handles from
// the NativeProcessor. They mirror the Mat-based algorithms: NativeAverage
// pairs with AverageHash, NativeDifference with GradientHash and
// NativePerception with PerceptualHash.

// NativeAverage computes goimagehash's average hash.
type NativeAverage struct{}

// Fingerprint computes the 64-bit average hash of a native handle.
func (NativeAverage) Fingerprint(img hasher.Image) (uint64, error) {
	nh, err := asNative(img)
	if err != nil {
		return 0, err
	}
	hash, err := goimagehash.AverageHash(nh.img)
	if err != nil {
		return 0, err
	}
	return hash.GetHash(), nil
}

// NativeDifference computes goimagehash's gradient-based difference hash.
type NativeDifference struct{}

// Fingerprint computes the 64-bit difference hash of a native handle.
func (NativeDifference) Fingerprint(img hasher.Image) (uint64, error) {
	nh, err := asNative(img)
	if err != nil {
		return 0, err
	}
	hash, err := goimagehash.DifferenceHash(nh.img)
	if err != nil {
		return 0, err
	}
	return hash.GetHash(), nil
}

// NativePerception computes goimagehash's DCT-based perception hash.
type NativePerception struct{}

// Fingerprint computes the 64-bit perception hash of a native handle.
func (NativePerception) Fingerprint(img hasher.Image) (uint64, error) {
	nh, err := asNative(img)
	if err != nil {
		return 0, err
	}
	hash, err := goimagehash.PerceptionHash(nh.img)
	if err != nil {
		return 0, err
	}
	return hash.GetHash(), nil
}
