// Package importer reconciles registry data into the tracker store.
//
// Import syncs from the live registry: exchanges in one request, networks
// paged and filtered by the stored watermark (the latest network update),
// then memberships followed by a single departure inference pass.
// Backfill replays an archived monthly dump through the same reconcilers.
//
// Records that cannot be applied (unknown country, bad numbers or dates,
// references to unknown exchanges or networks) are logged and skipped.
// Transport and decode failures end the run with registry.ErrFetch; the next
// run resumes from the watermark.
package importer
