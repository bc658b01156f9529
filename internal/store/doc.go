// Package store provides SQLite-backed durable key/value storage for save
// records.
//
// Each key maps to one opaque string value (a serialized save record). Set
// replaces the whole value; there is no partial update. The store is the
// durable backend behind save.Slot and satisfies save.KV.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - A single open connection (SQLite has one writer)
//
// The schema is applied on Open and stamped with PRAGMA user_version; a
// database stamped by a newer build is refused.
package store
