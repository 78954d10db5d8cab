// Package library discovers audio samples on disk and turns them into
// tournament roster entries.
//
// Scan walks a source directory without following symlinks by default and
// keeps files with a configured audio extension. Display names are normalized
// to Unicode NFC, and two paths that differ only in normalization form are
// treated as the same sample.
package library
