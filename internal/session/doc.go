// Package session persists tournaments between CLI invocations.
//
// A Store keeps every session's tournament state as JSON in a SQLite catalog
// keyed by UUID and a unique human name. Writers serialize through a per-session
// file lock so two terminals cannot interleave transitions on the same
// tournament. SaveFile and LoadFile read and write the standalone pretty-JSON
// progress format; anything loaded from outside the catalog is validated before
// it reaches the engine.
//
// The catalog schema carries a version number. Bump schemaVersion in schema.go
// when schema.sql changes; older databases are rejected with ErrSchemaMismatch.
package session
