package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.wav"))
	touch(t, filepath.Join(dir, "a.FLAC"))
	touch(t, filepath.Join(dir, "nested", "c.mp3"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "noext"))

	res, err := Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(res.Entries), res.Entries)
	}
	root, _ := Canonicalize(dir)
	if res.Root != root {
		t.Fatalf("unexpected root: got %q want %q", res.Root, root)
	}
	want := []string{"a.FLAC", "b.wav", "c.mp3"}
	for i, entry := range res.Entries {
		if entry.Filename != want[i] {
			t.Fatalf("entry %d: got %q want %q", i, entry.Filename, want[i])
		}
		if !filepath.IsAbs(entry.Path) {
			t.Fatalf("expected absolute path, got %q", entry.Path)
		}
	}
}

func TestScanCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.wav"))
	touch(t, filepath.Join(dir, "b.opus"))

	res, err := Scan(context.Background(), dir, Options{Extensions: []string{".OPUS"}})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Filename != "b.opus" {
		t.Fatalf("unexpected entries: %+v", res.Entries)
	}
}

func TestScanSkipsSymlinksByDefault(t *testing.T) {
	outside := t.TempDir()
	touch(t, filepath.Join(outside, "escape.wav"))
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "inside.wav"))
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "escape.wav"), filepath.Join(dir, "file-link.wav")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res, err := Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Filename != "inside.wav" {
		t.Fatalf("expected only inside.wav, got %+v", res.Entries)
	}

	res, err = Scan(context.Background(), dir, Options{FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Scan with symlinks failed: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries when following symlinks, got %+v", res.Entries)
	}
	wantLinked := filepath.Join(res.Root, "link", "escape.wav")
	if res.Entries[2].Path != wantLinked {
		t.Fatalf("expected linked entry to keep link location %q, got %q", wantLinked, res.Entries[2].Path)
	}
	if len(res.LinkTargets) == 0 {
		t.Fatal("expected outside link targets to be reported")
	}
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.wav"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, dir, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanNormalizesToNFC(t *testing.T) {
	dir := t.TempDir()
	decomposed := norm.NFD.String("café.wav")
	touch(t, filepath.Join(dir, decomposed))

	res, err := Scan(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", res.Entries)
	}
	if got := res.Entries[0].Filename; got != norm.NFC.String("café.wav") {
		t.Fatalf("expected NFC filename, got %q", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := map[string]string{
		"kick_hard-01.wav":  "Kick Hard 01",
		"snare.TIGHT.flac":  "Snare TIGHT",
		"808 sub bass.aiff": "808 Sub Bass",
		"___.wav":           "___.wav",
	}
	for in, want := range cases {
		if got := DisplayTitle(in); got != want {
			t.Fatalf("DisplayTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
