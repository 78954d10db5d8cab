package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizePrefetch()
	c.normalizeRemote()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	exts := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized == "" || slices.Contains(exts, normalized) {
			continue
		}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Scan.Extensions = exts
}

func (c *Config) normalizePrefetch() {
	if c.Prefetch.Bytes <= 0 {
		c.Prefetch.Bytes = defaultPrefetchBytes
	}
	if c.Prefetch.Workers <= 0 {
		c.Prefetch.Workers = defaultPrefetchWorkers
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.Bucket = strings.TrimSpace(c.Remote.Bucket)
	if c.Remote.Bucket == "" {
		if value, ok := os.LookupEnv("SAMPLERANK_S3_BUCKET"); ok {
			c.Remote.Bucket = strings.TrimSpace(value)
		}
	}
	c.Remote.Prefix = strings.Trim(strings.TrimSpace(c.Remote.Prefix), "/")
	if c.Remote.Prefix == "" {
		c.Remote.Prefix = defaultRemotePrefix
	}
}

func (c *Config) normalizeMetrics() error {
	var err error
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
