// Package logging provides structured logging setup for dltindex.
//
// Logs are written as JSON lines to a size-rotated file under
// ~/.dltindex/logs/, optionally mirrored to stderr.
package logging
