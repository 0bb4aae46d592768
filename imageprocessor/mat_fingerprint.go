package imageprocessor

import (
	"fmt"
	"image"
	"sort"

	"imagehasher/hasher"

	"gocv.io/x/gocv"
)

// AverageHash fingerprints a Mat by resizing to 8x8, converting to
// grayscale and setting one bit per pixel at or above the mean intensity.
type AverageHash struct{}

// Fingerprint computes the 64-bit average hash of a Mat handle.
func (AverageHash) Fingerprint(img hasher.Image) (uint64, error) {
	gray, err := resizeGray(img, 8, 8)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	// Mean pixel value over the 8x8 thumbnail.
	var sum uint64
	for y := 0; y < gray.Rows(); y++ {
		for x := 0; x < gray.Cols(); x++ {
			sum += uint64(gray.GetUCharAt(y, x))
		}
	}
	mean := float64(sum) / 64.0

	var hash uint64
	for y := 0; y < gray.Rows(); y++ {
		for x := 0; x < gray.Cols(); x++ {
			hash <<= 1
			if float64(gray.GetUCharAt(y, x)) >= mean {
				hash |= 1
			}
		}
	}
	return hash, nil
}

// GradientHash fingerprints a Mat with a difference hash: resize to 9x8,
// convert to grayscale and set one bit per adjacent-column comparison.
// It is insensitive to brightness shifts that move the global mean.
type GradientHash struct{}

// Fingerprint computes the 64-bit difference hash of a Mat handle.
func (GradientHash) Fingerprint(img hasher.Image) (uint64, error) {
	gray, err := resizeGray(img, 9, 8)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	var hash uint64
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			hash <<= 1
			if gray.GetUCharAt(y, x) < gray.GetUCharAt(y, x+1) {
				hash |= 1
			}
		}
	}
	return hash, nil
}

// PerceptualHash fingerprints a Mat with a DCT-based hash: resize to 32x32,
// convert to grayscale, take the 8x8 low-frequency block of the DCT and set
// one bit per coefficient at or above the block median.
type PerceptualHash struct{}

// Fingerprint computes the 64-bit DCT perceptual hash of a Mat handle.
func (PerceptualHash) Fingerprint(img hasher.Image) (uint64, error) {
	gray, err := resizeGray(img, 32, 32)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	// DCT needs a float matrix.
	floatImg := gocv.NewMat()
	defer floatImg.Close()
	gray.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)
	if dct.Empty() {
		return 0, fmt.Errorf("DCT produced an empty matrix")
	}

	lowFreq := dct.Region(image.Rect(0, 0, 8, 8))
	defer lowFreq.Close()

	values := make([]float32, 0, 64)
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			values = append(values, lowFreq.GetFloatAt(y, x))
		}
	}
	median := calculateMedian(values)

	var hash uint64
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			hash <<= 1
			if lowFreq.GetFloatAt(y, x) >= median {
				hash |= 1
			}
		}
	}
	return hash, nil
}

// resizeGray resizes a Mat handle to the given size and converts it to a
// single grayscale channel. The caller owns the returned Mat.
func resizeGray(img hasher.Image, width, height int) (gocv.Mat, error) {
	mh, err := asMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	if mh.mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("cannot fingerprint an empty image")
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mh.mat, &resized, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	if resized.Channels() != 1 {
		gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	} else {
		resized.CopyTo(&gray)
	}
	return gray, nil
}

// calculateMedian returns the median of a float32 slice without modifying it.
func calculateMedian(values []float32) float32 {
	valuesCopy := make([]float32, len(values))
	copy(valuesCopy, values)

	sort.Slice(valuesCopy, func(i, j int) bool {
		return valuesCopy[i] < valuesCopy[j]
	})

	length := len(valuesCopy)
	if length == 0 {
		return 0
	}
	if length%2 == 0 {
		return (valuesCopy[length/2-1] + valuesCopy[length/2]) / 2
	}
	return valuesCopy[length/2]
}
