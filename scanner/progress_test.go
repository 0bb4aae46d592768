package scanner

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestProgressTrackerCountsAllResultsBeforeStats(t *testing.T) {
	resultsChan := make(chan ProcessImageResult, 100)
	tracker := NewProgressTracker(FileStats{totalFiles: 100}, resultsChan)

	// Fill the channel buffer completely so the drain still has work to
	// do when Stop is called.
	for i := 0; i < 100; i++ {
		result := ProcessImageResult{
			Path:    fmt.Sprintf("/photos/%03d.png", i),
			Success: true,
		}
		switch {
		case i%10 == 0:
			result.Success = false
			result.Error = errors.New("decode failed")
		case i%10 == 5:
			result.Skipped = true
		}
		resultsChan <- result
	}
	close(resultsChan)

	// Stop must not return until every buffered result has been counted.
	tracker.Stop()

	processed, skipped, errCount := tracker.snapshot()
	if processed != 100 {
		t.Errorf("processed = %d; want 100", processed)
	}
	if skipped != 10 {
		t.Errorf("skipped = %d; want 10", skipped)
	}
	if errCount != 10 {
		t.Errorf("errors = %d; want 10", errCount)
	}

	// Reading the final statistics after Stop must be safe.
	PrintCompletionStats(tracker, time.Now(), ScanOptions{})
}
