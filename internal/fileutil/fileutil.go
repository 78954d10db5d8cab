// Package fileutil holds the file copy helpers used when exporting samples.
package fileutil

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrCopyMismatch reports that the copy on disk does not match its source.
var ErrCopyMismatch = errors.New("copy verification failed")

// CopyFileVerified copies src to dst keeping the source permissions, then
// re-reads dst and compares its digest with the one taken while reading src.
// dst is removed when anything goes wrong after it was created.
func CopyFileVerified(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	srcSum := sha256.New()
	n, copyErr := io.Copy(out, io.TeeReader(in, srcSum))
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), copyErr)
	}
	if n != info.Size() {
		return fmt.Errorf("%w: source %d bytes, copied %d", ErrCopyMismatch, info.Size(), n)
	}

	dstSum, err := digest(dst)
	if err != nil {
		return err
	}
	if string(dstSum) != string(srcSum.Sum(nil)) {
		return fmt.Errorf("%w: %s checksum differs", ErrCopyMismatch, filepath.Base(dst))
	}
	return nil
}

func digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reopen destination: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("read destination: %w", err)
	}
	return h.Sum(nil), nil
}

// UniquePath returns dir/name, or dir/"stem (N)".ext for the first N that
// does not exist yet.
func UniquePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for n := 2; ; n++ {
		switch _, err := os.Lstat(candidate); {
		case errors.Is(err, fs.ErrNotExist):
			return candidate, nil
		case err != nil:
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
}
