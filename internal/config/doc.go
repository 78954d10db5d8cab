// Package config loads, normalizes, and validates samplerank configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as SAMPLERANK_S3_BUCKET.
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and validation errors that name the
// offending TOML key.
package config
