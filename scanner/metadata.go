package scanner

import (
	"os/exec"
	"sync"
	"time"

	"imagehasher/logging"

	"github.com/barasher/go-exiftool"
)

// exifTimeLayout is the timestamp format exiftool reports for capture times
const exifTimeLayout = "2006:01:02 15:04:05"

// MetadataExtractor reads EXIF capture times through a long-lived exiftool
// process. When the exiftool binary is not installed it degrades to the
// file modification time, so scans never fail on metadata alone.
type MetadataExtractor struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewMetadataExtractor starts an exiftool session if the binary is
// available. Close must be called when scanning is done.
func NewMetadataExtractor() *MetadataExtractor {
	if _, err := exec.LookPath("exiftool"); err != nil {
		logging.LogInfo("exiftool not found, capture times fall back to file modification times")
		return &MetadataExtractor{}
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.LogWarning("cannot start exiftool: %v", err)
		return &MetadataExtractor{}
	}
	return &MetadataExtractor{et: et}
}

// Close shuts down the exiftool session
func (m *MetadataExtractor) Close() {
	if m.et != nil {
		m.et.Close()
	}
}

// CaptureTime returns the EXIF capture time of an image as RFC3339, or the
// fallback time when no usable EXIF timestamp exists.
func (m *MetadataExtractor) CaptureTime(path string, fallback time.Time) string {
	if m.et == nil {
		return fallback.Format(time.RFC3339)
	}

	// The stay-open exiftool process handles one request at a time
	m.mu.Lock()
	metas := m.et.ExtractMetadata(path)
	m.mu.Unlock()

	if len(metas) == 1 && metas[0].Err == nil {
		for _, tag := range []string{"DateTimeOriginal", "CreateDate"} {
			raw, err := metas[0].GetString(tag)
			if err != nil {
				continue
			}
			if t, err := time.ParseInLocation(exifTimeLayout, raw, time.Local); err == nil {
				return t.Format(time.RFC3339)
			}
		}
	}

	return fallback.Format(time.RFC3339)
}
