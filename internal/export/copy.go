package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"samplerank/internal/fileutil"
	"samplerank/internal/tournament"
)

// CopySamples copies each item's file into dir, verifying every copy. Name
// collisions get a numeric suffix. It returns the destination paths in order.
func CopySamples(ctx context.Context, items []tournament.Item, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create copy directory: %w", err)
	}
	copied := make([]string, 0, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		name := it.Filename
		if name == "" {
			name = filepath.Base(it.Path)
		}
		dst, err := fileutil.UniquePath(dir, name)
		if err != nil {
			return copied, err
		}
		if err := fileutil.CopyFileVerified(it.Path, dst); err != nil {
			return copied, fmt.Errorf("copy %s: %w", it.Path, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}
