// Package main hosts the samplerank CLI entrypoint and command graph.
//
// The Cobra-based command tree creates tournaments from sample folders, drives
// the comparison loop, and moves session state between the catalog, files, and
// remote backup. It centralizes configuration resolution, session lookup and
// locking, logging, and metrics so subcommands only apply engine transitions
// and render results.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
