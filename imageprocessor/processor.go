// Package imageprocessor implements the image-processing and fingerprinting
// capabilities consumed by the hasher package: an OpenCV-backed processor,
// a pure-Go processor, and the fingerprint algorithms that run on each.
package imageprocessor

import (
	"errors"
	"fmt"
)

// ErrUnreadableImage reports input bytes that no decoder could turn into an
// image. Use errors.Is to detect it under wrapping.
var ErrUnreadableImage = errors.New("unreadable image")

// errWrongHandle is returned when a capability receives a handle produced by
// a different processor. Processors and fingerprinters are paired; mixing
// backends is a wiring error, not a data error.
func errWrongHandle(img interface{}) error {
	return fmt.Errorf("unsupported image handle type %T", img)
}
