package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imagehasher/hasher"
)

// commands recognized on the command line
var commands = []string{"scan", "search", "compare", "dupes"}

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	return parseArgumentList(os.Args[1:])
}

// parseArgumentList is the testable core of ParseArguments
func parseArgumentList(argv []string) map[string]string {
	args := make(map[string]string)

	// First, identify the command
	commandIndex := -1
	for i, arg := range argv {
		for _, cmd := range commands {
			if arg == cmd {
				args["command"] = cmd
				commandIndex = i
				break
			}
		}
		if commandIndex >= 0 {
			break
		}
	}

	// Process all arguments, skipping the command
	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = argv[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "images.db"
	}

	// Return the default database path next to the executable
	return filepath.Join(filepath.Dir(exePath), "images.db")
}

// ParseMode parses an encoding mode name; an empty string selects hex
func ParseMode(name string) (hasher.Mode, error) {
	switch strings.ToLower(name) {
	case "", "hex":
		return hasher.ModeHex, nil
	case "decimal", "dec":
		return hasher.ModeDecimal, nil
	default:
		return hasher.ModeHex, fmt.Errorf("unknown encoding mode %q (use hex or decimal)", name)
	}
}

// ParseDistanceThreshold parses and validates a Hamming distance threshold
func ParseDistanceThreshold(thresholdStr string, fallback int) (int, error) {
	parsed, err := strconv.Atoi(thresholdStr)
	if err != nil || parsed < 0 || parsed > 64 {
		return fallback, fmt.Errorf("invalid distance threshold %q, using default (%d)", thresholdStr, fallback)
	}
	return parsed, nil
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s scan --folder=PATH [--database=PATH] [--prefix=NAME] [--algorithm=NAME] [--mode=hex|decimal] [--force] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s search --image=PATH [--database=PATH] [--distance=N] [--prefix=NAME] [--algorithm=NAME] [--debug]\n", os.Args[0])
	fmt.Printf("  %s compare --image=PATH --image2=PATH [--algorithm=NAME] [--mode=hex|decimal]\n", os.Args[0])
	fmt.Printf("  %s dupes [--database=PATH] [--distance=N] [--prefix=NAME] [--mode=hex|decimal]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder      : Path to folder containing images to scan\n")
	fmt.Printf("  --image       : Path to an image (query image for search)\n")
	fmt.Printf("  --image2      : Path to the second image for compare\n")
	fmt.Printf("  --database    : Path to database file (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --prefix      : Source prefix for scanning/filtering results\n")
	fmt.Printf("  --algorithm   : Fingerprint algorithm (default: gradient)\n")
	fmt.Printf("  --mode        : Hash encoding mode, hex or decimal (default: hex)\n")
	fmt.Printf("  --force       : Force rewrite existing entries during scan\n")
	fmt.Printf("  --distance    : Max Hamming distance for matches (0-64, default: 10)\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Specify custom log file path (default: imagehasher.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s scan --folder=/path/to/images --prefix=ExternalDrive1 --debug\n", os.Args[0])
	fmt.Printf("  %s search --image=/path/to/query.jpg --distance=8\n", os.Args[0])
	fmt.Printf("  %s compare --image=a.jpg --image2=b.jpg\n", os.Args[0])
}
