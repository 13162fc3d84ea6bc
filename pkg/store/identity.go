package store

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// FileID identifies the layout record of one diagram file.
type FileID string

const fileIDPrefix = "layout:"

// Identity derives the FileID for a schema file path. The path is made
// absolute and cleaned first, so "./a.dbml" and "/work/a.dbml" map to the
// same record when the working directory is /work.
func Identity(path string) FileID {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return FileID(fileIDPrefix + Hash([]byte(abs)))
}

// String returns the key used by backends.
func (id FileID) String() string { return string(id) }

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
