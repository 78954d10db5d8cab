package pathguard

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNotExist is returned for paths that do not exist.
	ErrNotExist = errors.New("file does not exist")
	// ErrDenied is returned for paths outside every allowed root.
	ErrDenied = errors.New("access denied: path is outside allowed directories")
)

// AllowedPaths holds canonical roots. The zero value allows nothing and is
// safe for concurrent use.
type AllowedPaths struct {
	mu     sync.RWMutex
	source string
	extra  []string
}

// New returns a guard rooted at sourceDir. An empty sourceDir allows nothing
// until SetSource or Allow is called.
func New(sourceDir string) *AllowedPaths {
	g := &AllowedPaths{}
	if sourceDir != "" {
		g.SetSource(sourceDir)
	}
	return g
}

// SetSource replaces the source directory root.
func (g *AllowedPaths) SetSource(dir string) {
	canonical := canonicalize(dir)
	g.mu.Lock()
	g.source = canonical
	g.mu.Unlock()
}

// Allow adds an extra root (a directory or a single file).
func (g *AllowedPaths) Allow(path string) {
	canonical := canonicalize(path)
	if canonical == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.extra {
		if existing == canonical {
			return
		}
	}
	g.extra = append(g.extra, canonical)
}

// AllowRoster allows each path whose unresolved location lies under the
// source directory. Roster entries reached through followed directory links
// resolve outside the source and would otherwise be denied.
func (g *AllowedPaths) AllowRoster(paths ...string) {
	g.mu.RLock()
	source := g.source
	g.mu.RUnlock()
	if source == "" {
		return
	}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if within(filepath.Clean(abs), source) {
			g.Allow(path)
		}
	}
}

// IsAllowed resolves symlinks in path and reports whether the result lies
// within an allowed root. Paths that cannot be resolved are never allowed.
func (g *AllowedPaths) IsAllowed(path string) bool {
	resolved, err := resolve(path)
	if err != nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.source != "" && within(resolved, g.source) {
		return true
	}
	for _, root := range g.extra {
		if within(resolved, root) {
			return true
		}
	}
	return false
}

// Check returns ErrNotExist or ErrDenied for paths that must not be opened.
func (g *AllowedPaths) Check(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !g.IsAllowed(path) {
		return fmt.Errorf("%w: %s", ErrDenied, path)
	}
	return nil
}

// FileURL returns a file:// URL for an existing, allowed file.
func (g *AllowedPaths) FileURL(path string) (string, error) {
	if err := g.Check(path); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// canonicalize resolves what exists; roots that do not exist yet (an export
// directory about to be created) are kept as cleaned absolute paths.
func canonicalize(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if resolved, err := resolve(path); err == nil {
		return resolved
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return filepath.Clean(abs)
}

func within(path, root string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
