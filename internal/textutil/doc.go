// Package textutil sanitizes user-supplied names for filesystem use.
//
// SanitizeFileName keeps a name readable while removing characters that are
// unsafe in paths; SanitizeToken reduces a name to a lowercase slug suitable
// for generated identifiers.
package textutil
