package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"imagehasher/database"
	"imagehasher/hasher"
	"imagehasher/imageprocessor"
	"imagehasher/logging"
	"imagehasher/scanner"
	"imagehasher/signalhandler"
	"imagehasher/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	// Get the command
	command, hasCommand := args["command"]

	// Set default database path
	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	} else if customDB, ok := args["db"]; ok && customDB != "" {
		// Allow --db as an alias for --database
		dbPath = customDB
	}

	// Setup debug logging if enabled
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "imagehasher.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	// Check if required arguments are missing
	showUsage := !hasCommand

	if hasCommand && command == "scan" && args["folder"] == "" {
		showUsage = true
	}

	if hasCommand && command == "search" && args["image"] == "" {
		showUsage = true
	}

	if hasCommand && command == "compare" && (args["image"] == "" || args["image2"] == "") {
		showUsage = true
	}

	// Show usage if required arguments are missing
	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "scan":
		handleScanCommand(args, dbPath, debugMode)
	case "search":
		handleSearchCommand(args, dbPath)
	case "compare":
		handleCompareCommand(args)
	case "dupes":
		handleDupesCommand(args, dbPath)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

// buildHasher assembles a hasher from the --algorithm and --mode flags
func buildHasher(args map[string]string) (*hasher.Hasher, error) {
	registry := imageprocessor.NewAlgorithmRegistry()
	alg, err := registry.Get(args["algorithm"])
	if err != nil {
		return nil, err
	}

	mode, err := utils.ParseMode(args["mode"])
	if err != nil {
		return nil, err
	}

	return hasher.New(alg.Processor, alg.Fingerprinter, mode), nil
}

func handleScanCommand(args map[string]string, dbPath string, debugMode bool) {
	folderPath := args["folder"]

	// Verify folder path exists and is accessible
	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", folderPath)
		} else {
			log.Fatalf("Cannot access folder path: %s (%v)", folderPath, err)
		}
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folderPath)
	}

	h, err := buildHasher(args)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// Get force rewrite flag
	forceRewrite := false
	if _, ok := args["force"]; ok {
		forceRewrite = true
	}

	startTime := time.Now()

	// Initialize database with retry logic
	var db *sql.DB
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		} else {
			log.Fatalf("Error initializing database after %d attempts: %v", maxRetries, err)
		}
	}
	defer db.Close()

	// Create scan options with all parameters
	scanOptions := scanner.ScanOptions{
		FolderPath:   folderPath,
		SourcePrefix: args["prefix"],
		Hasher:       h,
		ForceRewrite: forceRewrite,
		DebugMode:    debugMode,
		MaxWorkers:   signalhandler.GetOptimalProcs(),
	}

	// Run scanner with graceful shutdown handling
	errChan := make(chan error, 1)
	doneChan := make(chan bool, 1)

	go func() {
		if err := scanner.ScanAndStoreFolder(db, scanOptions); err != nil {
			errChan <- err
		} else {
			doneChan <- true
		}
	}()

	// Wait for completion or error
	select {
	case err := <-errChan:
		log.Fatalf("Error scanning folder: %v", err)
	case <-doneChan:
		// Print execution time
		duration := time.Since(startTime)
		fmt.Printf("\nScan completed successfully!\n")
		fmt.Printf("Total execution time: %v\n", duration)
		fmt.Printf("Database: %s\n", dbPath)

		// Print summary statistics if available
		stats, err := database.GetScanStats(db, args["prefix"])
		if err == nil && stats != nil {
			fmt.Printf("\nSummary:\n")
			fmt.Printf("- Total images indexed: %d\n", stats.TotalImages)
			fmt.Printf("- Unique image hashes: %d\n", stats.UniqueHashes)
		}
	}
}

func handleSearchCommand(args map[string]string, dbPath string) {
	queryPath := args["image"]

	// Set custom distance threshold if provided
	maxDistance := 10
	if distanceStr, ok := args["distance"]; ok {
		parsed, err := utils.ParseDistanceThreshold(distanceStr, maxDistance)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		maxDistance = parsed
	}

	// Verify paths exist
	if _, err := os.Stat(queryPath); os.IsNotExist(err) {
		log.Fatalf("Query image does not exist: %s", queryPath)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run scan command first.", dbPath)
	}

	h, err := buildHasher(args)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	startTime := time.Now()

	// Open database
	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	fmt.Println("Searching for similar images...")
	if prefix := args["prefix"]; prefix != "" {
		fmt.Printf("Filtering by source prefix: %s\n", prefix)
	}

	// Hash the query image and rank stored fingerprints against it
	queryHash, err := h.HashFile(queryPath)
	if err != nil {
		log.Fatalf("Error hashing query image: %v", err)
	}

	matches, err := database.SearchByDistance(db, queryHash, h.Mode(), args["prefix"], maxDistance)
	if err != nil {
		log.Fatalf("Error finding similar images: %v", err)
	}

	// Print top matches
	fmt.Println("\nTop Matches:")
	limit := 5 // Show top 5 matches

	if len(matches) == 0 {
		fmt.Println("No matches found.")
	} else {
		for i := 0; i < limit && i < len(matches); i++ {
			fmt.Printf("%d. Image: %s\n", i+1, matches[i].Path)
			if matches[i].SourcePrefix != "" {
				fmt.Printf("   Source: %s\n", matches[i].SourcePrefix)
			}
			fmt.Printf("   Hamming distance: %d\n", matches[i].Distance)
		}
	}

	// Print execution time
	duration := time.Since(startTime)
	fmt.Printf("\nTotal search time: %v\n", duration)
}

func handleCompareCommand(args map[string]string) {
	h, err := buildHasher(args)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	dist, err := h.MultipleCompareFiles(args["image"], args["image2"])
	if err != nil {
		log.Fatalf("Error comparing images: %v", err)
	}

	fmt.Printf("Comparing %s and %s:\n", args["image"], args["image2"])
	fmt.Printf("- Full image distance: %d\n", dist.Full)
	fmt.Printf("- Left half distance:  %d\n", dist.Left)
	fmt.Printf("- Right half distance: %d\n", dist.Right)
}

func handleDupesCommand(args map[string]string, dbPath string) {
	maxDistance := 10
	if distanceStr, ok := args["distance"]; ok {
		parsed, err := utils.ParseDistanceThreshold(distanceStr, maxDistance)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		maxDistance = parsed
	}

	mode, err := utils.ParseMode(args["mode"])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run scan command first.", dbPath)
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	pairs, err := database.FindNearDuplicates(db, mode, args["prefix"], maxDistance)
	if err != nil {
		log.Fatalf("Error finding duplicates: %v", err)
	}

	if len(pairs) == 0 {
		fmt.Println("No near-duplicate pairs found.")
		return
	}

	fmt.Printf("Found %d near-duplicate pairs (max distance %d):\n\n", len(pairs), maxDistance)
	for _, pair := range pairs {
		fmt.Printf("%s\n%s\n", pair.PathA, pair.PathB)
		fmt.Printf("  distance: %d (left: %d, right: %d)\n\n",
			pair.Distance, pair.LeftDistance, pair.RightDistance)
	}
}
