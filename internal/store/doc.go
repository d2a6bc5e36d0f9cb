// Package store provides SQLite-backed durable storage for records.
//
// Every record type shares one table:
//
//	records(seq, type, rid, fields)
//
// seq is assigned on first insert and never changes, so it defines the
// storage-natural order; re-putting an existing (type, rid) replaces its
// fields in place. fields holds the record as canonical JSON, and queries
// reach into it with json_extract (see internal/querysql).
//
// Store implements the record resolver used by the select builder:
// Resolve compiles a queryir.Select, runs it and decodes each row's fields.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
