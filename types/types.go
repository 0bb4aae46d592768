package types

// ImageInfo holds the metadata and composite fingerprint of an indexed image
type ImageInfo struct {
	ID           int64  `json:"id"`
	Path         string `json:"path"`
	SourcePrefix string `json:"source_prefix"`
	Format       string `json:"format"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	CreatedAt    string `json:"created_at"`
	ModifiedAt   string `json:"modified_at"`
	Size         int64  `json:"size"`
	Hash         string `json:"hash"`
	LeftHash     string `json:"left_hash"`
	RightHash    string `json:"right_hash"`
}

// ImageMatch holds one search result ranked by Hamming distance
type ImageMatch struct {
	Path         string
	SourcePrefix string
	Distance     int
}

// DuplicatePair holds a near-duplicate candidate pair with its composite
// distances
type DuplicatePair struct {
	PathA         string
	PathB         string
	Distance      int
	LeftDistance  int
	RightDistance int
}
