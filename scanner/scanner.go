package scanner

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imagehasher/database"
	"imagehasher/logging"
	"imagehasher/types"
)

// ScanAndStoreFolder walks a folder, computes the composite fingerprint of
// every supported image through the configured hasher and stores the
// results in the database.
func ScanAndStoreFolder(db *sql.DB, options ScanOptions) error {
	if options.Hasher == nil {
		return fmt.Errorf("scan options carry no hasher")
	}

	maxWorkers := options.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 4
	}

	// Initialize components for parallel processing
	var wg sync.WaitGroup
	resultsChan := make(chan ProcessImageResult, 100)
	semaphore := make(chan struct{}, maxWorkers)

	// Count files before processing
	fileStats := countFilesToProcess(options)

	// Display initial information
	PrintStartupInfo(fileStats, options)

	// Set up progress tracking
	progressTracker := NewProgressTracker(fileStats, resultsChan)

	// One exiftool session shared by all workers
	metadata := NewMetadataExtractor()
	defer metadata.Close()

	// Process files
	startTime := time.Now()
	err := walkAndProcessFiles(db, options, metadata, &wg, resultsChan, semaphore)

	// Wait for all processing to complete, then for the tracker to drain
	// the remaining results before the final counters are read
	wg.Wait()
	close(resultsChan)
	progressTracker.Stop()

	// Print final statistics
	PrintCompletionStats(progressTracker, startTime, options)

	return err
}

// countFilesToProcess counts the image files under the scan folder
func countFilesToProcess(options ScanOptions) FileStats {
	stats := FileStats{}

	if options.DebugMode {
		logging.DebugLog("Starting image scan on folder: %s", options.FolderPath)
		logging.DebugLog("Force rewrite: %v, Source prefix: %s", options.ForceRewrite, options.SourcePrefix)
	}

	filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if IsImageFile(path) {
			stats.totalFiles++
		}
		return nil
	})

	return stats
}

// walkAndProcessFiles traverses the directory and processes each file
func walkAndProcessFiles(db *sql.DB, options ScanOptions, metadata *MetadataExtractor, wg *sync.WaitGroup, resultsChan chan ProcessImageResult, semaphore chan struct{}) error {
	return filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			if err != nil && options.DebugMode {
				logging.LogError("Error accessing path %s: %v", path, err)
			}
			return nil
		}

		if IsImageFile(path) {
			wg.Add(1)
			// Acquire semaphore
			semaphore <- struct{}{}

			go func(p string) {
				defer wg.Done()
				defer func() { <-semaphore }() // Release semaphore when done

				resultsChan <- processAndStoreImage(db, p, options, metadata)
			}(path)
		}

		return nil
	})
}

// processAndStoreImage fingerprints a single image and stores it
func processAndStoreImage(db *sql.DB, path string, options ScanOptions, metadata *MetadataExtractor) ProcessImageResult {
	result := ProcessImageResult{
		Path:    path,
		Success: false,
	}

	// Skip processing if the image already exists and hasn't been modified
	if !options.ForceRewrite {
		if skipResult := checkAndSkipIfUnchanged(db, path, options); skipResult != nil {
			return *skipResult
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Errorf("cannot stat file %s: %v", path, err)
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("cannot read file %s: %v", path, err)
		return result
	}

	// Decode once to measure, then composite-hash from the same bytes.
	// The orchestrator owns every handle it opens, so nothing here leaks
	// even when fingerprinting fails partway.
	width, height, err := measureImage(options, data)
	if err != nil {
		result.Error = fmt.Errorf("failed to measure image %s: %v", path, err)
		return result
	}

	multi, err := options.Hasher.MultipleHash(data)
	if err != nil {
		result.Error = fmt.Errorf("failed to hash image %s: %v", path, err)
		return result
	}

	imageInfo := types.ImageInfo{
		Path:         path,
		SourcePrefix: options.SourcePrefix,
		Format:       GetFileFormat(path),
		Width:        width,
		Height:       height,
		CreatedAt:    metadata.CaptureTime(path, fileInfo.ModTime()),
		ModifiedAt:   fileInfo.ModTime().Format(time.RFC3339),
		Size:         fileInfo.Size(),
		Hash:         multi.Full,
		LeftHash:     multi.Left,
		RightHash:    multi.Right,
	}

	if err := database.StoreImageInfo(db, imageInfo, options.ForceRewrite); err != nil {
		result.Error = fmt.Errorf("cannot store data for %s: %v", path, err)
		return result
	}

	if options.DebugMode {
		logging.DebugLog("Indexed %s (%dx%d, hash %s)", path, width, height, multi.Full)
	}

	result.Success = true
	return result
}

// measureImage decodes the image bytes just long enough to read dimensions
func measureImage(options ScanOptions, data []byte) (int, int, error) {
	proc := options.Hasher.Processor()
	img, err := proc.Decode(data)
	if err != nil {
		return 0, 0, err
	}
	defer proc.Release(img)

	return proc.Dimensions(img)
}

// checkAndSkipIfUnchanged checks if an image can be skipped because it hasn't changed
func checkAndSkipIfUnchanged(db *sql.DB, path string, options ScanOptions) *ProcessImageResult {
	exists, storedModTime, err := database.CheckImageExists(db, path, options.SourcePrefix)
	if err != nil {
		return &ProcessImageResult{
			Path:  path,
			Error: fmt.Errorf("database error for %s: %v", path, err),
		}
	}

	if exists {
		// Image already indexed, check if it needs update
		fileInfo, err := os.Stat(path)
		if err != nil {
			return &ProcessImageResult{
				Path:  path,
				Error: fmt.Errorf("cannot stat file %s: %v", path, err),
			}
		}

		// Parse stored time and compare with file modified time
		storedTime, err := time.Parse(time.RFC3339, storedModTime)
		if err != nil {
			return &ProcessImageResult{
				Path:  path,
				Error: fmt.Errorf("cannot parse stored time for %s: %v", path, err),
			}
		}

		// If file hasn't been modified, skip processing
		if !fileInfo.ModTime().After(storedTime) {
			if options.DebugMode {
				logging.DebugLog("Skipping unchanged image: %s", path)
			}
			return &ProcessImageResult{
				Path:    path,
				Success: true,
				Skipped: true,
			}
		}
	}

	return nil
}
