package hasher

import (
	"fmt"
	"os"
)

// MultiHash bundles fingerprints of a whole image and of its left and right
// halves. The halves add positional discrimination that a single global
// fingerprint lacks: mirrored or half-edited images keep a low full-image
// distance but diverge on the side that changed.
type MultiHash struct {
	Full  string
	Left  string
	Right string
}

// MultipleHash decodes raw image bytes and fingerprints the whole image,
// its left half and its right half independently. The image is split at the
// integer column midpoint: for width w the left crop covers columns
// [0, w/2) and the right crop covers [w/2, w).
//
// All three image handles are released before returning, on every path,
// including when fingerprinting fails partway through.
func (h *Hasher) MultipleHash(data []byte) (MultiHash, error) {
	full, err := h.proc.Decode(data)
	if err != nil {
		return MultiHash{}, err
	}
	defer h.proc.Release(full)

	width, height, err := h.proc.Dimensions(full)
	if err != nil {
		return MultiHash{}, fmt.Errorf("cannot measure image: %w", err)
	}

	mid := width / 2

	left, err := h.proc.Crop(full, 0, 0, mid, height)
	if err != nil {
		return MultiHash{}, fmt.Errorf("cannot crop left half: %w", err)
	}
	defer h.proc.Release(left)

	right, err := h.proc.Crop(full, mid, 0, width-mid, height)
	if err != nil {
		return MultiHash{}, fmt.Errorf("cannot crop right half: %w", err)
	}
	defer h.proc.Release(right)

	fullHash, err := h.Hash(full)
	if err != nil {
		return MultiHash{}, err
	}
	leftHash, err := h.Hash(left)
	if err != nil {
		return MultiHash{}, err
	}
	rightHash, err := h.Hash(right)
	if err != nil {
		return MultiHash{}, err
	}

	return MultiHash{Full: fullHash, Left: leftHash, Right: rightHash}, nil
}

// HashFile reads and hashes a single image file.
func (h *Hasher) HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return h.HashBytes(data)
}

// MultipleHashFile reads an image file and computes its composite hash.
func (h *Hasher) MultipleHashFile(path string) (MultiHash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MultiHash{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return h.MultipleHash(data)
}
