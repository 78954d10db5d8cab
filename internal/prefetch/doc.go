// Package prefetch warms the page cache for samples that are about to be
// compared, so playback starts without a cold disk read.
//
// A Preloader reads the head of each upcoming file with a bounded worker pool.
// Concurrent requests for the same path share one read, and paths the guard
// rejects are skipped.
package prefetch
