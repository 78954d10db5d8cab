// Package testsupport builds configs, catalogs and sample files for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"samplerank/internal/config"
)

// ConfigOption adjusts a generated test config. base is the per-test temp root.
type ConfigOption func(cfg *config.Config, base string)

// NewConfig returns the default config with every directory moved under a
// fresh t.TempDir(), then applies opts in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "export")
	cfg.Prefetch.Workers = 2

	for _, opt := range opts {
		opt(&cfg, base)
	}
	return &cfg
}

// WithThreshold overrides the advancement threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config, _ string) {
		cfg.Tournament.AdvancementThreshold = threshold
	}
}

// WithMetricsTextfile points the metrics textfile at a temp path.
func WithMetricsTextfile() ConfigOption {
	return func(cfg *config.Config, base string) {
		cfg.Metrics.TextfilePath = filepath.Join(base, "metrics", "samplerank.prom")
	}
}

// BaseDir returns the temp root backing a config built by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
