package imageprocessor

import (
	"fmt"
	"image"

	"imagehasher/hasher"
	"imagehasher/logging"

	"gocv.io/x/gocv"
)

// matHandle wraps a gocv.Mat so release can be guarded against double
// frees. The underlying Mat owns native OpenCV memory and leaks if it is
// never closed.
type matHandle struct {
	mat      gocv.Mat
	released bool
}

// MatProcessor is the OpenCV-backed image-processing capability. It decodes
// the widest range of formats and is the default backend.
type MatProcessor struct{}

// NewMatProcessor creates an OpenCV-backed processor.
func NewMatProcessor() *MatProcessor {
	return &MatProcessor{}
}

// Decode turns raw image bytes into a Mat handle.
func (p *MatProcessor) Decode(data []byte) (hasher.Image, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: decoder produced an empty image", ErrUnreadableImage)
	}
	return &matHandle{mat: mat}, nil
}

// Dimensions reports the pixel width and height of a Mat handle.
func (p *MatProcessor) Dimensions(img hasher.Image) (int, int, error) {
	mh, err := asMat(img)
	if err != nil {
		return 0, 0, err
	}
	return mh.mat.Cols(), mh.mat.Rows(), nil
}

// Crop returns an independent handle for the given region. The region view
// is cloned so the crop survives release of its source.
func (p *MatProcessor) Crop(img hasher.Image, x, y, w, h int) (hasher.Image, error) {
	mh, err := asMat(img)
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > mh.mat.Cols() || y+h > mh.mat.Rows() {
		return nil, fmt.Errorf("crop region %dx%d at (%d,%d) outside image %dx%d",
			w, h, x, y, mh.mat.Cols(), mh.mat.Rows())
	}

	region := mh.mat.Region(image.Rect(x, y, x+w, y+h))
	defer region.Close()

	return &matHandle{mat: region.Clone()}, nil
}

// Release frees the OpenCV memory behind a handle. Safe against handles
// from other processors and against a second call on the same handle.
func (p *MatProcessor) Release(img hasher.Image) {
	mh, ok := img.(*matHandle)
	if !ok {
		logging.LogWarning("release called with a non-Mat handle (%T)", img)
		return
	}
	if mh.released {
		return
	}
	mh.released = true
	mh.mat.Close()
}

// asMat extracts the live Mat from a handle.
func asMat(img hasher.Image) (*matHandle, error) {
	mh, ok := img.(*matHandle)
	if !ok {
		return nil, errWrongHandle(img)
	}
	if mh.released {
		return nil, fmt.Errorf("image handle used after release")
	}
	return mh, nil
}
