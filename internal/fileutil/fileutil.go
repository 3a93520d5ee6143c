// Package fileutil copies script files into the managed script directory.
package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"
)

// CopyFileVerified streams src to dst through a temporary file in dst's
// directory, comparing blake3 digests of what was read and what was written
// before renaming into place. dst is left untouched on failure.
func CopyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	srcHasher := blake3.New(32, nil)
	dstHasher := blake3.New(32, nil)
	if _, err := io.Copy(io.MultiWriter(tmp, dstHasher), io.TeeReader(in, srcHasher)); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	written, err := os.ReadFile(tmpPath)
	if err != nil {
		return err
	}
	check := blake3.Sum256(written)
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) || !bytes.Equal(check[:], dstHasher.Sum(nil)) {
		return fmt.Errorf("copy hash mismatch: %s corrupted during copy", src)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

// ImportInto copies src into dir under its base name and returns the new
// path. Importing a file that already lives in dir is a no-op.
func ImportInto(src, dir string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(absDir, filepath.Base(absSrc))
	if dst == absSrc {
		return dst, nil
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create script directory: %w", err)
	}
	if err := CopyFileVerified(absSrc, dst); err != nil {
		return "", fmt.Errorf("import %s: %w", src, err)
	}
	return dst, nil
}
