package testsupport

import (
	"context"
	"testing"

	"samplerank/internal/config"
	"samplerank/internal/session"
	"samplerank/internal/tournament"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewState builds a tournament over the named entries with roster-order pairings.
func NewState(t testing.TB, sourceDir string, names ...string) tournament.State {
	t.Helper()

	entries := make([]tournament.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, tournament.Entry{Path: sourceDir + "/" + name, Filename: name})
	}
	state, err := tournament.New(entries, sourceDir, 0, noShuffle{})
	if err != nil {
		t.Fatalf("tournament.New: %v", err)
	}
	return state
}

// NewSession creates a session in store over the named entries.
func NewSession(t testing.TB, store *session.Store, name, sourceDir string, names ...string) *session.Session {
	t.Helper()

	sess, err := store.Create(context.Background(), name, NewState(t, sourceDir, names...))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return sess
}

type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}
