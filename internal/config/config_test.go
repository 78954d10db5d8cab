package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"samplerank/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SAMPLERANK_S3_BUCKET", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "samplerank")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "samplerank.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Tournament.AdvancementThreshold != 0.5 {
		t.Fatalf("unexpected threshold: %v", cfg.Tournament.AdvancementThreshold)
	}
	if cfg.Tournament.PrefetchCount != 3 {
		t.Fatalf("unexpected prefetch count: %d", cfg.Tournament.PrefetchCount)
	}
	if !slices.Contains(cfg.Scan.Extensions, "flac") {
		t.Fatalf("expected default extensions, got %v", cfg.Scan.Extensions)
	}
	if cfg.Remote.Enabled {
		t.Fatal("expected remote backup disabled by default")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "samplerank.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Tournament struct {
			AdvancementThreshold float64 `toml:"advancement_threshold"`
			MinExportScore       int     `toml:"min_export_score"`
		} `toml:"tournament"`
		Scan struct {
			Extensions []string `toml:"extensions"`
		} `toml:"scan"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Tournament.AdvancementThreshold = 0.25
	custom.Tournament.MinExportScore = 2
	custom.Scan.Extensions = []string{" .WAV", "wav", "Flac", ""}
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Tournament.AdvancementThreshold != 0.25 {
		t.Fatalf("expected threshold 0.25, got %v", cfg.Tournament.AdvancementThreshold)
	}
	if cfg.Tournament.MinExportScore != 2 {
		t.Fatalf("expected min export score 2, got %d", cfg.Tournament.MinExportScore)
	}
	if want := []string{"wav", "flac"}; !slices.Equal(cfg.Scan.Extensions, want) {
		t.Fatalf("unexpected extensions: got %v want %v", cfg.Scan.Extensions, want)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Prefetch.Workers != config.Default().Prefetch.Workers {
		t.Fatalf("expected default prefetch workers, got %d", cfg.Prefetch.Workers)
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "samplerank.toml")
	if err := os.WriteFile(configPath, []byte("[tournament]\nadvancement_threshold = 1.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "tournament.advancement_threshold") {
		t.Fatalf("error should name the key, got %v", err)
	}
}

func TestRemoteBucketFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "samplerank.toml")
	if err := os.WriteFile(configPath, []byte("[remote]\nenabled = true\nprefix = \"/backups/\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SAMPLERANK_S3_BUCKET", " ranked-samples ")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.Bucket != "ranked-samples" {
		t.Fatalf("expected bucket from env, got %q", cfg.Remote.Bucket)
	}
	if cfg.Remote.Prefix != "backups" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.Remote.Prefix)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "samplerank") {
		t.Fatalf("expected data dir to contain samplerank, got %q", cfg.Paths.DataDir)
	}
	if cfg.Tournament.AdvancementThreshold != config.Default().Tournament.AdvancementThreshold {
		t.Fatalf("sample threshold drifted from default: %v", cfg.Tournament.AdvancementThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Tournament.AdvancementThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero threshold")
	}

	cfg = config.Default()
	cfg.Tournament.PrefetchCount = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative prefetch count")
	}

	cfg = config.Default()
	cfg.Prefetch.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero prefetch workers")
	}

	cfg = config.Default()
	cfg.Remote.Enabled = true
	cfg.Remote.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when remote enabled without bucket")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
