package pathguard

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIsAllowedWithinSource(t *testing.T) {
	src := t.TempDir()
	inside := filepath.Join(src, "kicks", "a.wav")
	write(t, inside)
	outside := filepath.Join(t.TempDir(), "b.wav")
	write(t, outside)

	g := New(src)
	if !g.IsAllowed(inside) {
		t.Fatalf("expected %s to be allowed", inside)
	}
	if g.IsAllowed(outside) {
		t.Fatalf("expected %s to be denied", outside)
	}
	if g.IsAllowed(filepath.Join(src, "missing.wav")) {
		t.Fatal("expected missing file to be denied")
	}
}

func TestIsAllowedRejectsSiblingPrefix(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "samples")
	sibling := filepath.Join(base, "samples-private", "a.wav")
	write(t, filepath.Join(src, "ok.wav"))
	write(t, sibling)

	if New(src).IsAllowed(sibling) {
		t.Fatal("sibling directory sharing a name prefix must not be allowed")
	}
}

func TestIsAllowedResolvesSymlinkEscape(t *testing.T) {
	src := t.TempDir()
	secret := filepath.Join(t.TempDir(), "secret.wav")
	write(t, secret)
	link := filepath.Join(src, "innocent.wav")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	g := New(src)
	if g.IsAllowed(link) {
		t.Fatal("symlink escaping the source directory must be denied")
	}
	g.Allow(secret)
	if !g.IsAllowed(link) {
		t.Fatal("expected explicitly allowed target to pass")
	}
}

func TestCheckAndFileURL(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "snare 01.wav")
	write(t, file)
	g := New(src)

	u, err := g.FileURL(file)
	if err != nil {
		t.Fatalf("FileURL failed: %v", err)
	}
	if !strings.HasPrefix(u, "file://") || !strings.Contains(u, "snare%2001.wav") {
		t.Fatalf("unexpected url: %s", u)
	}

	if _, err := g.FileURL(filepath.Join(src, "nope.wav")); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	other := filepath.Join(t.TempDir(), "x.wav")
	write(t, other)
	if err := g.Check(other); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}

func TestZeroValueDeniesAndIsConcurrentSafe(t *testing.T) {
	var g AllowedPaths
	dir := t.TempDir()
	file := filepath.Join(dir, "a.wav")
	write(t, file)
	if g.IsAllowed(file) {
		t.Fatal("zero value must deny")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); g.Allow(dir) }()
		go func() { defer wg.Done(); _ = g.IsAllowed(file) }()
	}
	wg.Wait()
	if !g.IsAllowed(file) {
		t.Fatal("expected file to be allowed after Allow")
	}
}

func TestAllowRosterAdmitsLinkedEntriesUnderSource(t *testing.T) {
	src := t.TempDir()
	external := t.TempDir()
	target := filepath.Join(external, "pack", "hat.wav")
	write(t, target)
	linkDir := filepath.Join(src, "pack")
	if err := os.Symlink(filepath.Dir(target), linkDir); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	logical := filepath.Join(linkDir, "hat.wav")
	stray := filepath.Join(t.TempDir(), "stray.wav")
	write(t, stray)

	g := New(src)
	if g.IsAllowed(logical) {
		t.Fatal("linked entry should be denied before AllowRoster")
	}
	g.AllowRoster(logical, stray)
	if !g.IsAllowed(logical) {
		t.Fatal("expected roster entry under the source to be allowed")
	}
	if g.IsAllowed(stray) {
		t.Fatal("roster entry outside the source must stay denied")
	}
}
