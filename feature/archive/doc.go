// Package archive locates and parses historical registry dumps for backfill.
//
// A month is backfilled from the first day that has a published dump: the
// Fetcher expands Config.URLTemplate for day 1, 2, ... and stops at the first
// HTTP 200. When no day resolves, Locate returns ErrNotFound.
//
// Dumps are JSON documents with "ix", "net" and "netixlan" sections, each
// {"data": [...]}. Older dumps use Python literal syntax (single quotes,
// True/False/None), so Parse falls back to a literal parser.
//
// With object storage enabled, a Mirror keeps every located dump and later
// backfills of the same month read it instead of probing the archive.
package archive
