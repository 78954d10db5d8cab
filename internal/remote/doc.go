// Package remote backs up session state documents to Amazon S3.
//
// Objects live under <prefix>/<session-id>.json, with a .gz suffix and gzip
// Content-Encoding when compression is enabled. Credentials come from the
// default AWS configuration chain.
package remote
