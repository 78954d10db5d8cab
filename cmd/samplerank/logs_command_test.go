package main

import (
	"strings"
	"testing"
)

func TestLogsFiltersBySession(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "new", env.samplesDir, "--name", "kicks")
	mustRunCLI(t, env, "new", env.samplesDir, "--name", "snares")
	mustRunCLI(t, env, "--session", "kicks", "vote", "a")

	out := mustRunCLI(t, env, "--session", "kicks", "logs", "--event", "comparison")
	requireContains(t, out, `"msg":"comparison recorded"`)
	if got := strings.Count(strings.TrimSpace(out), "\n") + 1; got != 1 {
		t.Fatalf("expected one comparison line, got %d:\n%s", got, out)
	}

	out = mustRunCLI(t, env, "--session", "snares", "logs")
	if strings.Contains(out, "comparison recorded") {
		t.Fatalf("expected kicks lines filtered out, got:\n%s", out)
	}
	requireContains(t, out, "session created")
}
