package hasher

import (
	"fmt"
	"os"
)

// MultiDistance holds the three pairwise distances of a composite
// comparison. The sub-distances are independent; callers that want a single
// score combine them with their own weighting.
type MultiDistance struct {
	Full  int
	Left  int
	Right int
}

// Compare hashes two images from raw bytes and returns the Hamming distance
// between their full-image fingerprints.
func (h *Hasher) Compare(data1, data2 []byte) (int, error) {
	h1, err := h.HashBytes(data1)
	if err != nil {
		return 0, err
	}
	h2, err := h.HashBytes(data2)
	if err != nil {
		return 0, err
	}
	return h.Distance(h1, h2)
}

// CompareFiles is Compare over two image files.
func (h *Hasher) CompareFiles(path1, path2 string) (int, error) {
	data1, err := os.ReadFile(path1)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path1, err)
	}
	data2, err := os.ReadFile(path2)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path2, err)
	}
	return h.Compare(data1, data2)
}

// MultipleCompare computes composite hashes for both inputs and returns the
// full-vs-full, left-vs-left and right-vs-right distances.
func (h *Hasher) MultipleCompare(data1, data2 []byte) (MultiDistance, error) {
	m1, err := h.MultipleHash(data1)
	if err != nil {
		return MultiDistance{}, err
	}
	m2, err := h.MultipleHash(data2)
	if err != nil {
		return MultiDistance{}, err
	}
	return h.MultiDistance(m1, m2)
}

// MultipleCompareFiles is MultipleCompare over two image files.
func (h *Hasher) MultipleCompareFiles(path1, path2 string) (MultiDistance, error) {
	data1, err := os.ReadFile(path1)
	if err != nil {
		return MultiDistance{}, fmt.Errorf("cannot read %s: %w", path1, err)
	}
	data2, err := os.ReadFile(path2)
	if err != nil {
		return MultiDistance{}, fmt.Errorf("cannot read %s: %w", path2, err)
	}
	return h.MultipleCompare(data1, data2)
}

// MultiDistance compares two previously computed composite hashes. Both must
// have been encoded under the instance mode.
func (h *Hasher) MultiDistance(a, b MultiHash) (MultiDistance, error) {
	full, err := h.Distance(a.Full, b.Full)
	if err != nil {
		return MultiDistance{}, err
	}
	left, err := h.Distance(a.Left, b.Left)
	if err != nil {
		return MultiDistance{}, err
	}
	right, err := h.Distance(a.Right, b.Right)
	if err != nil {
		return MultiDistance{}, err
	}
	return MultiDistance{Full: full, Left: left, Right: right}, nil
}
