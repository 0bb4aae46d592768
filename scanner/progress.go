package scanner

import (
	"fmt"
	"time"

	"imagehasher/logging"
)

// NewProgressTracker initializes the progress tracker
func NewProgressTracker(stats FileStats, resultsChan chan ProcessImageResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		drained:    make(chan struct{}),
		totalFiles: stats.totalFiles,
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	// Start result processor goroutine
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Printf("\rProgress: %d/%d (Skipped: %d, Errors: %d)",
					p.processed, p.totalFiles, p.skipped, p.errors)
			} else {
				fmt.Printf("\rProgress: %d/%d (Skipped: %d)",
					p.processed, p.totalFiles, p.skipped)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state based on processing results
func (p *ProgressTracker) processResults(resultsChan chan ProcessImageResult) {
	defer close(p.drained)

	for result := range resultsChan {
		p.mu.Lock()
		p.processed++

		if result.Skipped {
			p.skipped++
		}

		if !result.Success {
			p.errors++
			if result.Error != nil {
				logging.LogFileHashed(result.Path, false, result.Error.Error())
			}
		} else if !result.Skipped {
			logging.LogFileHashed(result.Path, true, "")
		}

		p.mu.Unlock()
	}
}

// Stop ends the progress tracking. The results channel must be closed
// before calling Stop; it blocks until every buffered result has been
// counted, so the counters are final once Stop returns.
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	p.done <- true
	<-p.drained
}

// snapshot returns the current counter values under the lock.
func (p *ProgressTracker) snapshot() (processed, skipped, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.skipped, p.errors
}

// PrintStartupInfo displays information about the scan before starting
func PrintStartupInfo(stats FileStats, options ScanOptions) {
	fmt.Printf("Starting image indexing...\nTotal image files to process: %d\n", stats.totalFiles)
	fmt.Printf("Force rewrite mode: %v\n", options.ForceRewrite)
	fmt.Printf("Encoding mode: %s\n", options.Hasher.Mode())

	if options.SourcePrefix != "" {
		fmt.Printf("Source prefix: %s\n", options.SourcePrefix)
	}

	if options.DebugMode {
		fmt.Printf("Debug mode: enabled\n")
		logging.DebugLog("Found %d image files to process", stats.totalFiles)
	}
}

// PrintCompletionStats displays statistics after scan completion
func PrintCompletionStats(tracker *ProgressTracker, startTime time.Time, options ScanOptions) {
	elapsed := time.Since(startTime)
	processed, skipped, errors := tracker.snapshot()

	if options.DebugMode {
		logging.DebugLog("Scan completed in %v. Processed: %d, Skipped: %d, Errors: %d",
			elapsed, processed, skipped, errors)
	}

	fmt.Println("\nIndexing complete.")
	fmt.Printf("Processed %d images in %v.\n", processed, elapsed.Round(time.Second))

	if skipped > 0 {
		fmt.Printf("Skipped %d unchanged images.\n", skipped)
	}

	if errors > 0 {
		fmt.Printf("Encountered %d errors during indexing.\n", errors)
		fmt.Println("Check the log file for details.")
	}
}
