package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"samplerank/internal/export"
	"samplerank/internal/session"
	"samplerank/internal/testsupport"
)

func TestNewStatusVoteAdvanceFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "new", env.samplesDir, "--name", "kicks")
	requireContains(t, out, "Created session kicks")
	requireContains(t, out, "4 samples")
	requireContains(t, out, "2 comparisons in round 1")

	out = mustRunCLI(t, env, "status")
	requireContains(t, out, "Session kicks")
	requireContains(t, out, "Round 1 · comparison 1 of 2")
	requireContains(t, out, "  A: ")

	if _, _, err := runCLI(t, []string{"advance"}, env.configPath); err == nil || !strings.Contains(err.Error(), "not complete") {
		t.Fatalf("expected advance to refuse an open round, got %v", err)
	}

	mustRunCLI(t, env, "vote", "a")
	out = mustRunCLI(t, env, "vote", "b")
	requireContains(t, out, "Round 1 complete")

	if _, _, err := runCLI(t, []string{"vote", "a"}, env.configPath); err == nil || !strings.Contains(err.Error(), "samplerank advance") {
		t.Fatalf("expected vote on a complete round to point at advance, got %v", err)
	}

	out = mustRunCLI(t, env, "advance")
	requireContains(t, out, "Kept 2 of 4 samples for round 2")
	requireContains(t, out, "Round 2 · comparison 1 of 1")

	mustRunCLI(t, env, "vote", "left")

	out = mustRunCLI(t, env, "--json", "results")
	var records []export.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode results: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 ranked samples, got %d", len(records))
	}
	if records[0].Score != 2 || records[0].Rank != 1 {
		t.Fatalf("expected leader with 2 wins at rank 1, got %+v", records[0])
	}
	if records[1].Score != 1 {
		t.Fatalf("expected runner-up with 1 win, got %+v", records[1])
	}
}

func TestVoteSkipEndsTournament(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, extra := range env.samples[2:] {
		if err := os.Remove(extra); err != nil {
			t.Fatalf("remove %s: %v", extra, err)
		}
	}

	mustRunCLI(t, env, "new", env.samplesDir)
	out := mustRunCLI(t, env, "vote", "skip")
	requireContains(t, out, "Round 1 complete")

	out = mustRunCLI(t, env, "advance")
	requireContains(t, out, "Tournament complete")

	out = mustRunCLI(t, env, "results")
	requireContains(t, out, "No samples left in contention.")

	if _, _, err := runCLI(t, []string{"vote", "a"}, env.configPath); err == nil || !strings.Contains(err.Error(), "tournament is complete") {
		t.Fatalf("expected vote after completion to fail, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"advance"}, env.configPath); err == nil {
		t.Fatal("expected advance after completion to fail")
	}
}

func TestVoteRejectsUnknownChoice(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "new", env.samplesDir)

	_, _, err := runCLI(t, []string{"vote", "maybe"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown choice") {
		t.Fatalf("expected unknown choice error, got %v", err)
	}
}

func TestVoteWithoutSessions(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"vote", "a"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no sessions yet") {
		t.Fatalf("expected no sessions error, got %v", err)
	}
}

func TestVoteHonorsSessionFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "new", env.samplesDir, "--name", "first")
	mustRunCLI(t, env, "new", env.samplesDir, "--name", "second")

	mustRunCLI(t, env, "--session", "first", "vote", "a")

	store := testsupport.MustOpenStore(t, env.cfg)
	first, err := store.GetByName(t.Context(), "first")
	if err != nil {
		t.Fatalf("GetByName first: %v", err)
	}
	second, err := store.GetByName(t.Context(), "second")
	if err != nil {
		t.Fatalf("GetByName second: %v", err)
	}
	if first.State.CurrentPairingIndex != 1 {
		t.Fatalf("expected vote on first session, cursor at %d", first.State.CurrentPairingIndex)
	}
	if second.State.CurrentPairingIndex != 0 {
		t.Fatalf("expected second session untouched, cursor at %d", second.State.CurrentPairingIndex)
	}

	_, _, err = runCLI(t, []string{"--session", "frist", "status"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "did you mean first") {
		t.Fatalf("expected suggestion for misspelled session, got %v", err)
	}
	if !strings.Contains(err.Error(), session.ErrNotFound.Error()) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestVoteWritesMetricsTextfile(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithMetricsTextfile())
	mustRunCLI(t, env, "new", env.samplesDir, "--name", "kicks")
	mustRunCLI(t, env, "vote", "a")

	data, err := os.ReadFile(env.cfg.Metrics.TextfilePath)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	body := string(data)
	requireContains(t, body, `samplerank_comparisons_total{session="kicks"} 1`)
	requireContains(t, body, `samplerank_round{session="kicks"} 1`)
	requireContains(t, body, `samplerank_command_duration_seconds_count{command="vote"} 1`)
}
