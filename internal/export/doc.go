// Package export turns a tournament leaderboard into files other tools can use.
//
// Filter applies the minimum-score cutoff. Write renders the surviving items as
// a plain path list, an M3U playlist, JSON, or YAML. CopySamples copies the
// audio files themselves into a folder, verifying each copy.
package export
