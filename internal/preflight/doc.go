// Package preflight provides readiness checks for the filesystem paths,
// catalog, and optional services samplerank depends on.
//
// The CLI "samplerank doctor" command runs RunAll and prints one line per
// check; "samplerank new" uses CheckSourceDir before scanning. Remote checks
// are gated by their config toggle.
package preflight
