package descriptor

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// Hasher computes content checksums for files about to be uploaded.
type Hasher interface {
	Checksum(path string) (string, error)
}

// SHA256Hasher is the default Hasher, producing lowercase hex digests.
type SHA256Hasher struct{}

// Checksum streams the file through SHA-256
func (SHA256Hasher) Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// ChecksumBytes hashes in-memory content, used for generated artifacts
// like serialized resource maps.
func ChecksumBytes(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
