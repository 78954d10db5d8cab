// Package logs reads back the samplerank log file.
//
// It returns the last N matching lines with bounded memory and can follow the
// file for new lines, filtering JSON records by session and event type. The
// `samplerank logs` command is its only caller.
package logs
