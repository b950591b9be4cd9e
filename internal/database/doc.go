// Package database provides SQLite-based durable storage for maildigest.
//
// This package implements the SeenDB, the cross-document image
// deduplication ledger: an append-only set of content fingerprints for
// every image that has ever been accepted by visual extraction. The
// ledger survives process restarts, so an image seen in a prior run is
// still recognized as a duplicate.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
//  1. No external dependencies - the ledger is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. A single conflict-ignoring INSERT gives us an atomic
//     check-and-insert without explicit locking
//
// When the ledger cannot be opened (e.g. permission error), the component
// degrades to a pass-through mode where deduplication is disabled and
// every image is treated as novel. Degradation is logged as a warning and
// never crashes the host process.
package database
