package library

import (
	"encoding/hex"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// ContentHash returns the hex BLAKE3-256 digest of r.
func ContentHash(r io.Reader) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash script content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
