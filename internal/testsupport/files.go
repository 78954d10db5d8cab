package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parent directories) holding size bytes of
// filler. A size <= 0 writes a single byte so the file is never empty.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	body := bytes.Repeat([]byte{'B'}, int(max(size, 1)))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSamples creates small sample files named names under dir and returns
// their paths in the same order.
func WriteSamples(t testing.TB, dir string, names ...string) []string {
	t.Helper()

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		WriteFile(t, paths[i], 64)
	}
	return paths
}
