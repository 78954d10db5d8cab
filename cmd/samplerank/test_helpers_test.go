package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"samplerank/internal/config"
	"samplerank/internal/desktop"
	"samplerank/internal/pathguard"
	"samplerank/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	samplesDir string
	samples    []string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(sessionEnvVar, "")

	configPath := filepath.Join(homeDir, ".config", "samplerank", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	samplesDir := filepath.Join(base, "kicks")
	samples := testsupport.WriteSamples(t, samplesDir, "boom.wav", "thud.wav", "snap.wav", "knock.wav")

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		samplesDir: samplesDir,
		samples:    samples,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, input string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("samplerank %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
export_dir = %q

[tournament]
advancement_threshold = %g
prefetch_count = 2

[prefetch]
enabled = true
workers = 2

[metrics]
textfile_path = %q

[logging]
format = "json"
level = "debug"
`,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.ExportDir,
		cfg.Tournament.AdvancementThreshold,
		cfg.Metrics.TextfilePath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type launchCall struct {
	name  string
	args  []string
	stdin string
}

// stubLauncher replaces desktop helpers with a recorder for the test's duration.
func stubLauncher(t *testing.T) func() []launchCall {
	t.Helper()
	var mu sync.Mutex
	var calls []launchCall
	prev := newLauncher
	newLauncher = func(guard *pathguard.AllowedPaths) *desktop.Launcher {
		return desktop.New(guard).WithRunner(func(_ context.Context, name string, args []string, stdin string, _ bool) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, launchCall{name: name, args: append([]string(nil), args...), stdin: stdin})
			return nil
		})
	}
	t.Cleanup(func() { newLauncher = prev })
	return func() []launchCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]launchCall(nil), calls...)
	}
}
