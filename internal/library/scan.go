package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"samplerank/internal/tournament"
)

// ErrNotDirectory is returned when the scan root is missing or not a directory.
var ErrNotDirectory = errors.New("directory does not exist")

// DefaultExtensions lists the audio formats picked up when none are configured.
var DefaultExtensions = []string{"wav", "mp3", "flac", "ogg", "aiff", "m4a"}

// Options controls a scan.
type Options struct {
	// Extensions are matched case-insensitively without the leading dot.
	Extensions     []string
	FollowSymlinks bool
}

// Result is the outcome of a scan.
type Result struct {
	// Root is the canonical source directory.
	Root    string
	Entries []tournament.Entry
	// LinkTargets lists resolved symlink targets outside Root that were
	// followed. Callers add them to the path guard.
	LinkTargets []string
	Skipped     int
}

type scanner struct {
	ctx     context.Context
	opts    Options
	allowed map[string]struct{}
	seen    map[string]struct{}
	visited map[string]struct{}
	res     *Result
}

// Scan walks dir and returns one entry per audio file, sorted by path.
func Scan(ctx context.Context, dir string, opts Options) (Result, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	root, err := Canonicalize(dir)
	if err != nil {
		return Result{}, fmt.Errorf("canonicalize %s: %w", dir, err)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	s := &scanner{
		ctx:     ctx,
		opts:    opts,
		allowed: make(map[string]struct{}, len(exts)),
		seen:    make(map[string]struct{}),
		visited: map[string]struct{}{root: {}},
		res:     &Result{Root: root},
	}
	for _, ext := range exts {
		s.allowed[strings.TrimPrefix(strings.ToLower(ext), ".")] = struct{}{}
	}

	if err := s.walk(root, root); err != nil {
		return Result{}, err
	}
	slices.SortFunc(s.res.Entries, func(a, b tournament.Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return *s.res, nil
}

// walk visits physical and reports paths as if they lived under logical, so
// entries reached through a followed directory link keep the link's location.
func (s *scanner) walk(physical, logical string) error {
	return filepath.WalkDir(physical, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == physical {
				return err
			}
			// Unreadable entries are skipped; the rest of the library still loads.
			s.res.Skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := s.ctx.Err(); err != nil {
			return err
		}

		reported := logical + strings.TrimPrefix(path, physical)
		if d.Type()&fs.ModeSymlink != 0 {
			return s.followLink(path, reported)
		}
		if d.Type().IsRegular() {
			s.add(reported)
		}
		return nil
	})
}

func (s *scanner) followLink(path, reported string) error {
	if !s.opts.FollowSymlinks {
		return nil
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		s.res.Skipped++
		return nil
	}
	info, err := os.Stat(target)
	if err != nil {
		s.res.Skipped++
		return nil
	}
	switch {
	case info.IsDir():
		if _, loop := s.visited[target]; loop {
			return nil
		}
		s.visited[target] = struct{}{}
		s.linkTarget(target)
		return s.walk(target, reported)
	case info.Mode().IsRegular():
		if s.add(reported) {
			s.linkTarget(target)
		}
	}
	return nil
}

func (s *scanner) add(path string) bool {
	if _, ok := s.allowed[extension(path)]; !ok {
		return false
	}
	key := norm.NFC.String(path)
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.res.Entries = append(s.res.Entries, tournament.Entry{
		Path:     path,
		Filename: norm.NFC.String(filepath.Base(path)),
	})
	return true
}

func (s *scanner) linkTarget(target string) {
	if rel, err := filepath.Rel(s.res.Root, target); err == nil && !strings.HasPrefix(rel, "..") {
		return
	}
	s.res.LinkTargets = append(s.res.LinkTargets, target)
}

// Canonicalize returns the absolute, symlink-free form of path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
