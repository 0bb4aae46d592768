package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"imagehasher/hasher"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// nativeHandle wraps a pure-Go decoded image. There is no native memory
// behind it, so release only marks the handle dead.
type nativeHandle struct {
	img      image.Image
	released bool
}

// NativeProcessor is the pure-Go image-processing capability. It needs no
// OpenCV installation and covers JPEG, PNG, GIF, BMP, TIFF and WebP.
type NativeProcessor struct{}

// NewNativeProcessor creates a pure-Go processor.
func NewNativeProcessor() *NativeProcessor {
	return &NativeProcessor{}
}

// Decode turns raw image bytes into a handle using the registered stdlib
// and x/image decoders.
func (p *NativeProcessor) Decode(data []byte) (hasher.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return &nativeHandle{img: img}, nil
}

// Dimensions reports the pixel width and height of a handle.
func (p *NativeProcessor) Dimensions(img hasher.Image) (int, int, error) {
	nh, err := asNative(img)
	if err != nil {
		return 0, 0, err
	}
	bounds := nh.img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

// Crop copies the given region into an independent handle. Coordinates are
// relative to the image's top-left corner regardless of its bounds origin.
func (p *NativeProcessor) Crop(img hasher.Image, x, y, w, h int) (hasher.Image, error) {
	nh, err := asNative(img)
	if err != nil {
		return nil, err
	}
	bounds := nh.img.Bounds()
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > bounds.Dx() || y+h > bounds.Dy() {
		return nil, fmt.Errorf("crop region %dx%d at (%d,%d) outside image %dx%d",
			w, h, x, y, bounds.Dx(), bounds.Dy())
	}

	crop := image.NewRGBA(image.Rect(0, 0, w, h))
	src := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
	draw.Draw(crop, crop.Bounds(), nh.img, src, draw.Src)
	return &nativeHandle{img: crop}, nil
}

// Release marks a handle dead so later use is caught.
func (p *NativeProcessor) Release(img hasher.Image) {
	if nh, ok := img.(*nativeHandle); ok {
		nh.released = true
	}
}

// asNative extracts the live image from a handle.
func asNative(img hasher.Image) (*nativeHandle, error) {
	nh, ok := img.(*nativeHandle)
	if !ok {
		return nil, errWrongHandle(img)
	}
	if nh.released {
		return nil, fmt.Errorf("image handle used after release")
	}
	return nh, nil
}
