// Package store persists the tracker schema with gorm.
//
// Every write is a transactional read-modify-write keyed by a unique index:
// exchanges and networks by registry id, memberships by (exchange, network),
// statistics by (entity, month). Re-running an import or a stats month
// converges to the same rows.
//
// Missing keyed rows are reported as ErrNotFound.
package store
