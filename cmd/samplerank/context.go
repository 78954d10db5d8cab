package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"samplerank/internal/config"
	"samplerank/internal/logging"
	"samplerank/internal/metrics"
	"samplerank/internal/session"
)

const sessionEnvVar = "SAMPLERANK_SESSION"

type commandContext struct {
	configFlag  *string
	sessionFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	metricsOnce sync.Once
	metrics     *metrics.Recorder
}

func newCommandContext(configFlag, sessionFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		sessionFlag: sessionFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) recorder() *metrics.Recorder {
	c.metricsOnce.Do(func() {
		c.metrics = metrics.New()
	})
	return c.metrics
}

// flushMetrics writes the textfile when one is configured. Failures are
// logged, not returned: metrics never fail a command.
func (c *commandContext) flushMetrics(command string, elapsed time.Duration) error {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Metrics.TextfilePath == "" {
		return nil
	}
	rec := c.recorder()
	rec.ObserveCommand(command, elapsed)
	if err := rec.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		if logger, logErr := c.ensureLogger(); logErr == nil {
			logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check metrics.textfile_path is writable"),
				logging.String(logging.FieldImpact, "node_exporter shows stale samplerank metrics"),
			)
		}
	}
	return nil
}

func (c *commandContext) openStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := session.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session catalog: %w", err)
	}
	return store, nil
}

func (c *commandContext) sessionRef() string {
	if c.sessionFlag != nil {
		if ref := strings.TrimSpace(*c.sessionFlag); ref != "" {
			return ref
		}
	}
	return strings.TrimSpace(os.Getenv(sessionEnvVar))
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
