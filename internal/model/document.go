package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// DocumentRecord describes one stored plat map for the run-history
// database. The hash allows change detection if the county re-scans a
// sheet: a re-downloaded document with a different hash is a new scan.
type DocumentRecord struct {
	// ID is the canonical map ID string, e.g. "001-07".
	ID string `json:"id"`

	// Community is the community prefix, duplicated out of ID for
	// grouped queries.
	Community string `json:"community"`

	// SHA256 is the hex-encoded SHA-256 hash of the document bytes.
	SHA256 string `json:"sha256"`

	// Size is the document size in bytes.
	Size int64 `json:"size"`
}

// NewDocumentRecord builds a record for a stored document's content.
func NewDocumentRecord(id MapID, content []byte) DocumentRecord {
	sum := sha256.Sum256(content)
	return DocumentRecord{
		ID:        id.String(),
		Community: id.Community(),
		SHA256:    hex.EncodeToString(sum[:]),
		Size:      int64(len(content)),
	}
}
