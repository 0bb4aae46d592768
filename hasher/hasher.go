// Package hasher turns raw 64-bit perceptual fingerprints into encoded
// hashes, combines whole-image and half-image fingerprints into composite
// hashes, and measures bit-level distance between two encoded hashes.
//
// The actual fingerprinting algorithm and the image decoding/cropping
// machinery are pluggable capabilities supplied at construction time; this
// package only orchestrates them.
package hasher

import "fmt"

// Mode selects the textual encoding used for fingerprints.
type Mode int

const (
	// ModeHex encodes fingerprints as minimal-length lower-case hex strings.
	ModeHex Mode = iota
	// ModeDecimal encodes fingerprints as base-10 integers using the
	// signed 64-bit bit pattern of the unsigned value.
	ModeDecimal
)

// String returns the mode name as used by the command line.
func (m Mode) String() string {
	switch m {
	case ModeHex:
		return "hex"
	case ModeDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Image is an opaque handle to a decoded image. Handles are owned by the
// Processor that produced them and must be returned to it via Release.
type Image interface{}

// Processor supplies image decoding, measurement and cropping. Release must
// be safe to call exactly once per handle; implementations back handles with
// native resources (e.g. OpenCV matrices) that leak if not released.
type Processor interface {
	// Decode turns raw image bytes into an in-memory image handle.
	Decode(data []byte) (Image, error)

	// Dimensions reports the pixel width and height of an image.
	Dimensions(img Image) (width, height int, err error)

	// Crop returns a new handle for the region at (x, y) with the given
	// width and height. The returned handle is independent of the source.
	Crop(img Image, x, y, w, h int) (Image, error)

	// Release frees the native resources behind a handle.
	Release(img Image)
}

// Fingerprinter computes a 64-bit perceptual fingerprint of an image.
// Implementations must be deterministic for identical pixel content; no
// other contract is assumed about the algorithm.
type Fingerprinter interface {
	Fingerprint(img Image) (uint64, error)
}

// Hasher orchestrates a Processor and a Fingerprinter to produce encoded
// fingerprints. The encoding mode is fixed at construction; a Hasher holds
// no mutable state, so a single instance is safe for concurrent use.
type Hasher struct {
	proc Processor
	fp   Fingerprinter
	mode Mode
}

// New creates a Hasher over the given capabilities. All hashes produced by
// one instance use the same mode; hashes encoded under different modes must
// not be compared against each other.
func New(proc Processor, fp Fingerprinter, mode Mode) *Hasher {
	return &Hasher{proc: proc, fp: fp, mode: mode}
}

// Mode returns the encoding mode fixed at construction.
func (h *Hasher) Mode() Mode {
	return h.mode
}

// Processor returns the image-processing capability the instance was built
// with, for callers that need to decode or measure images themselves.
func (h *Hasher) Processor() Processor {
	return h.proc
}

// Hash fingerprints an already-decoded image and encodes the result.
// The caller keeps ownership of the handle.
func (h *Hasher) Hash(img Image) (string, error) {
	raw, err := h.fp.Fingerprint(img)
	if err != nil {
		return "", fmt.Errorf("fingerprint failed: %w", err)
	}
	return Encode(raw, h.mode), nil
}

// HashBytes decodes raw image bytes, fingerprints the image and encodes the
// result. The decoded handle is released before returning, on every path.
func (h *Hasher) HashBytes(data []byte) (string, error) {
	img, err := h.proc.Decode(data)
	if err != nil {
		return "", err
	}
	defer h.proc.Release(img)

	return h.Hash(img)
}
