// Package pathguard restricts which files samplerank will open, reveal, or
// hand out as URLs: the session's source directory plus paths the user named
// explicitly on the command line.
package pathguard
