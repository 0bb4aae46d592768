package hasher

import (
	"errors"
	"fmt"
	"testing"
)

// fakeImage is a synthetic image handle tracking its region and lifecycle.
type fakeImage struct {
	x, y, w, h int
	released   bool
}

// fakeProcessor hands out synthetic handles of a fixed size and records
// every handle it creates so tests can audit releases.
type fakeProcessor struct {
	width, height int
	decodeErr     error
	handles       []*fakeImage
}

func (p *fakeProcessor) Decode(data []byte) (Image, error) {
	if p.decodeErr != nil {
		return nil, p.decodeErr
	}
	img := &fakeImage{w: p.width, h: p.height}
	p.handles = append(p.handles, img)
	return img, nil
}

func (p *fakeProcessor) Dimensions(img Image) (int, int, error) {
	fi := img.(*fakeImage)
	return fi.w, fi.h, nil
}

func (p *fakeProcessor) Crop(img Image, x, y, w, h int) (Image, error) {
	crop := &fakeImage{x: x, y: y, w: w, h: h}
	p.handles = append(p.handles, crop)
	return crop, nil
}

func (p *fakeProcessor) Release(img Image) {
	fi := img.(*fakeImage)
	if fi.released {
		panic("handle released twice")
	}
	fi.released = true
}

func (p *fakeProcessor) leaked() []*fakeImage {
	var leaks []*fakeImage
	for _, img := range p.handles {
		if !img.released {
			leaks = append(leaks, img)
		}
	}
	return leaks
}

// fakeFingerprinter derives a deterministic value from the handle's region,
// so identical regions hash identically. failAt > 0 makes the Nth call fail.
type fakeFingerprinter struct {
	calls  int
	failAt int
}

func (f *fakeFingerprinter) Fingerprint(img Image) (uint64, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return 0, errors.New("fingerprint blew up")
	}
	fi := img.(*fakeImage)
	return uint64(fi.x)<<48 | uint64(fi.y)<<32 | uint64(fi.w)<<16 | uint64(fi.h), nil
}

func TestHashBytesReleasesHandle(t *testing.T) {
	proc := &fakeProcessor{width: 10, height: 10}
	h := New(proc, &fakeFingerprinter{}, ModeHex)

	if _, err := h.HashBytes([]byte("img")); err != nil {
		t.Fatalf("HashBytes failed: %v", err)
	}
	if leaks := proc.leaked(); len(leaks) != 0 {
		t.Errorf("leaked %d handles after HashBytes", len(leaks))
	}
}

func TestHashBytesDecodeFailure(t *testing.T) {
	proc := &fakeProcessor{decodeErr: errors.New("unreadable image")}
	h := New(proc, &fakeFingerprinter{}, ModeHex)

	if _, err := h.HashBytes([]byte("junk")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMultipleHashCropRegions(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantLeft  [4]int // x, y, w, h
		wantRight [4]int
	}{
		{"even width splits cleanly", 10, [4]int{0, 0, 5, 10}, [4]int{5, 0, 5, 10}},
		{"odd width gives floor half to the left", 9, [4]int{0, 0, 4, 10}, [4]int{4, 0, 5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{width: tt.width, height: 10}
			h := New(proc, &fakeFingerprinter{}, ModeHex)

			if _, err := h.MultipleHash([]byte("img")); err != nil {
				t.Fatalf("MultipleHash failed: %v", err)
			}

			// handles[0] is the full decode, [1] the left crop, [2] the right.
			if len(proc.handles) != 3 {
				t.Fatalf("expected 3 handles, got %d", len(proc.handles))
			}
			left, right := proc.handles[1], proc.handles[2]
			gotLeft := [4]int{left.x, left.y, left.w, left.h}
			gotRight := [4]int{right.x, right.y, right.w, right.h}
			if gotLeft != tt.wantLeft {
				t.Errorf("left crop = %v; want %v", gotLeft, tt.wantLeft)
			}
			if gotRight != tt.wantRight {
				t.Errorf("right crop = %v; want %v", gotRight, tt.wantRight)
			}
			if leaks := proc.leaked(); len(leaks) != 0 {
				t.Errorf("leaked %d handles", len(leaks))
			}
		})
	}
}

func TestMultipleHashReleasesOnPartialFailure(t *testing.T) {
	// Fail the second of the three fingerprint calls: every handle acquired
	// up to that point must still be released, and the error propagated.
	proc := &fakeProcessor{width: 10, height: 10}
	h := New(proc, &fakeFingerprinter{failAt: 2}, ModeHex)

	if _, err := h.MultipleHash([]byte("img")); err == nil {
		t.Fatal("expected fingerprint error to propagate")
	}
	if len(proc.handles) != 3 {
		t.Fatalf("expected 3 handles acquired, got %d", len(proc.handles))
	}
	if leaks := proc.leaked(); len(leaks) != 0 {
		t.Errorf("leaked %d handles after mid-pipeline failure", len(leaks))
	}
}

func TestMultipleCompareIdenticalImages(t *testing.T) {
	proc := &fakeProcessor{width: 10, height: 10}
	h := New(proc, &fakeFingerprinter{}, ModeHex)

	dist, err := h.MultipleCompare([]byte("same"), []byte("same"))
	if err != nil {
		t.Fatalf("MultipleCompare failed: %v", err)
	}
	if dist.Full != 0 || dist.Left != 0 || dist.Right != 0 {
		t.Errorf("identical images gave distances %+v; want all zero", dist)
	}
	if leaks := proc.leaked(); len(leaks) != 0 {
		t.Errorf("leaked %d handles", len(leaks))
	}
}

func TestCompareUsesInstanceMode(t *testing.T) {
	for _, mode := range []Mode{ModeHex, ModeDecimal} {
		t.Run(mode.String(), func(t *testing.T) {
			proc := &fakeProcessor{width: 8, height: 8}
			h := New(proc, &fakeFingerprinter{}, mode)

			dist, err := h.Compare([]byte("a"), []byte("b"))
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if dist != 0 {
				t.Errorf("identical synthetic images gave distance %d", dist)
			}
		})
	}
}

func TestHashEncodesWithMode(t *testing.T) {
	proc := &fakeProcessor{width: 10, height: 10}
	fp := &fakeFingerprinter{}
	img, _ := proc.Decode(nil)
	defer proc.Release(img)

	raw, _ := fp.Fingerprint(img)

	hex := New(proc, fp, ModeHex)
	got, err := hex.Hash(img)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if want := fmt.Sprintf("%x", raw); got != want {
		t.Errorf("hex Hash = %q; want %q", got, want)
	}

	dec := New(proc, fp, ModeDecimal)
	got, err = dec.Hash(img)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if want := fmt.Sprintf("%d", int64(raw)); got != want {
		t.Errorf("decimal Hash = %q; want %q", got, want)
	}
}
