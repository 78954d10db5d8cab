package preflight

import (
	"context"

	"samplerank/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckCreatable("Export directory", cfg.Paths.ExportDir),
		CheckCatalog(cfg),
	}
	if cfg.Metrics.TextfilePath != "" {
		results = append(results, CheckCreatable("Metrics textfile directory", parentDir(cfg.Metrics.TextfilePath)))
	}
	if cfg.Remote.Enabled {
		results = append(results, CheckRemote(ctx, cfg.Remote))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
