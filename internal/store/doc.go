// Package store provides the SQLite-backed audit/status repository.
//
// One database file holds two independent tables:
//   - Audit ledger: append-only, one row per commit attempt (including failed
//     ones), keyed by operation ID. Rows are never updated after insert.
//   - File status: one row per current file path with upsert semantics; the
//     newest commit replaces the prior row for that path.
//
// The two tables are written by separate short-lived statements with no
// multi-table transaction spanning them. A crash between the audit write and
// the status write leaves them inconsistent; callers accept eventual
// consistency between the two.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
