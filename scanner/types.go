package scanner

import (
	"sync"
	"time"

	"imagehasher/hasher"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath   string
	SourcePrefix string
	Hasher       *hasher.Hasher
	ForceRewrite bool
	DebugMode    bool
	MaxWorkers   int // Optional worker limit
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path    string
	Success bool
	Skipped bool
	Error   error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	totalFiles int
}

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed  int
	skipped    int
	errors     int
	ticker     *time.Ticker
	done       chan bool
	drained    chan struct{}
	mu         sync.Mutex
	totalFiles int
}
