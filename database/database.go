package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"imagehasher/hasher"
	"imagehasher/logging"
	"imagehasher/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		source_prefix TEXT,
		format TEXT,
		width INTEGER,
		height INTEGER,
		created_at TEXT,
		modified_at TEXT,
		size INTEGER,
		hash TEXT,
		left_hash TEXT,
		right_hash TEXT,
		UNIQUE(path, source_prefix)
	);
	CREATE INDEX IF NOT EXISTS idx_path ON images(path);
	CREATE INDEX IF NOT EXISTS idx_hash ON images(hash);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		return nil, err
	}

	// Databases written before composite hashing lack the half-image
	// columns; add them in place
	for _, column := range []string{"left_hash", "right_hash"} {
		var hasColumn bool
		err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('images') WHERE name=?", column).Scan(&hasColumn)
		if err != nil {
			return nil, fmt.Errorf("error checking for %s column: %v", column, err)
		}

		if !hasColumn {
			_, err = db.Exec(fmt.Sprintf("ALTER TABLE images ADD COLUMN %s TEXT;", column))
			if err != nil {
				return nil, fmt.Errorf("error adding %s column: %v", column, err)
			}
			logging.DebugLog("Added '%s' column to existing database schema", column)
		}
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// CheckImageExists checks if an image already exists in the database
func CheckImageExists(db *sql.DB, path string, sourcePrefix string) (bool, string, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&count)
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %v", path, err)
	}

	if count == 0 {
		return false, "", nil
	}

	// Get the stored modification time
	var storedModTime string
	err = db.QueryRow("SELECT modified_at FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&storedModTime)
	if err != nil {
		return true, "", fmt.Errorf("cannot get modified time for %s: %v", path, err)
	}

	return true, storedModTime, nil
}

// StoreImageInfo stores image metadata and its composite fingerprint
func StoreImageInfo(db *sql.DB, imageInfo types.ImageInfo, forceRewrite bool) error {
	now := time.Now().Format(time.RFC3339)
	createdAt := imageInfo.CreatedAt
	if createdAt == "" {
		createdAt = now
	}

	// Prepare statement to avoid SQL injection
	var stmt *sql.Stmt
	var insertErr error

	if forceRewrite {
		// Always use INSERT OR REPLACE when force rewrite is enabled
		stmt, insertErr = db.Prepare(`
			INSERT OR REPLACE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size, hash, left_hash, right_hash
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	} else {
		stmt, insertErr = db.Prepare(`
			INSERT OR IGNORE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size, hash, left_hash, right_hash
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	}

	if insertErr != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", imageInfo.Path, insertErr)
	}
	defer stmt.Close()

	_, err := stmt.Exec(
		imageInfo.Path,
		imageInfo.SourcePrefix,
		imageInfo.Format,
		imageInfo.Width,
		imageInfo.Height,
		createdAt,
		imageInfo.ModifiedAt,
		imageInfo.Size,
		imageInfo.Hash,
		imageInfo.LeftHash,
		imageInfo.RightHash,
	)

	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %v", imageInfo.Path, err)
	}

	return nil
}

// FingerprintRow is one stored composite fingerprint
type FingerprintRow struct {
	Path         string
	SourcePrefix string
	Hash         hasher.MultiHash
}

// LoadFingerprints retrieves the stored fingerprints, optionally filtered
// by source prefix
func LoadFingerprints(db *sql.DB, sourcePrefix string) ([]FingerprintRow, error) {
	var rows *sql.Rows
	var err error

	if sourcePrefix != "" {
		rows, err = db.Query(`SELECT path, source_prefix, hash, left_hash, right_hash FROM images WHERE source_prefix = ?`, sourcePrefix)
	} else {
		rows, err = db.Query(`SELECT path, source_prefix, hash, left_hash, right_hash FROM images`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fingerprints []FingerprintRow
	for rows.Next() {
		var row FingerprintRow
		if err := rows.Scan(&row.Path, &row.SourcePrefix, &row.Hash.Full, &row.Hash.Left, &row.Hash.Right); err != nil {
			return nil, fmt.Errorf("cannot scan fingerprint row: %v", err)
		}
		fingerprints = append(fingerprints, row)
	}

	return fingerprints, rows.Err()
}

// SearchByDistance ranks stored images by Hamming distance to the query
// hash and returns those within maxDistance, closest first
func SearchByDistance(db *sql.DB, query string, mode hasher.Mode, sourcePrefix string, maxDistance int) ([]types.ImageMatch, error) {
	fingerprints, err := LoadFingerprints(db, sourcePrefix)
	if err != nil {
		return nil, err
	}

	var matches []types.ImageMatch
	for _, row := range fingerprints {
		dist, err := hasher.Distance(query, row.Hash.Full, mode)
		if err != nil {
			logging.LogWarning("skipping %s: stored hash unreadable: %v", row.Path, err)
			continue
		}
		if dist <= maxDistance {
			matches = append(matches, types.ImageMatch{
				Path:         row.Path,
				SourcePrefix: row.SourcePrefix,
				Distance:     dist,
			})
		}
	}

	// Closest matches first
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	return matches, nil
}

// FindNearDuplicates reports every stored pair whose full-image distance is
// within maxDistance, with the half-image distances alongside
func FindNearDuplicates(db *sql.DB, mode hasher.Mode, sourcePrefix string, maxDistance int) ([]types.DuplicatePair, error) {
	fingerprints, err := LoadFingerprints(db, sourcePrefix)
	if err != nil {
		return nil, err
	}

	var pairs []types.DuplicatePair
	for i := 0; i < len(fingerprints); i++ {
		for j := i + 1; j < len(fingerprints); j++ {
			a, b := fingerprints[i], fingerprints[j]

			dist, err := hasher.Distance(a.Hash.Full, b.Hash.Full, mode)
			if err != nil {
				logging.LogWarning("skipping pair %s / %s: %v", a.Path, b.Path, err)
				continue
			}
			if dist > maxDistance {
				continue
			}

			leftDist, err := hasher.Distance(a.Hash.Left, b.Hash.Left, mode)
			if err != nil {
				continue
			}
			rightDist, err := hasher.Distance(a.Hash.Right, b.Hash.Right, mode)
			if err != nil {
				continue
			}

			pairs = append(pairs, types.DuplicatePair{
				PathA:         a.Path,
				PathB:         b.Path,
				Distance:      dist,
				LeftDistance:  leftDist,
				RightDistance: rightDist,
			})
		}
	}

	return pairs, nil
}

// ScanStats contains statistics from a scan operation
type ScanStats struct {
	TotalImages  int
	UniqueHashes int
}

// GetScanStats retrieves statistics about scanned images
func GetScanStats(db *sql.DB, sourcePrefix string) (*ScanStats, error) {
	var stats ScanStats
	var err error

	var totalQuery string
	var args []interface{}

	if sourcePrefix != "" {
		totalQuery = "SELECT COUNT(*) FROM images WHERE source_prefix = ?"
		args = append(args, sourcePrefix)
	} else {
		totalQuery = "SELECT COUNT(*) FROM images"
	}

	err = db.QueryRow(totalQuery, args...).Scan(&stats.TotalImages)
	if err != nil {
		return nil, fmt.Errorf("failed to get total images: %v", err)
	}

	var hashQuery string
	if sourcePrefix != "" {
		hashQuery = "SELECT COUNT(DISTINCT hash) FROM images WHERE source_prefix = ?"
	} else {
		hashQuery = "SELECT COUNT(DISTINCT hash) FROM images"
	}

	err = db.QueryRow(hashQuery, args...).Scan(&stats.UniqueHashes)
	if err != nil {
		return nil, fmt.Errorf("failed to get unique hashes: %v", err)
	}

	return &stats, nil
}
