// Package relocate performs the physical half of a commit: moving the
// primary file to its planned target and fanning out secondary references
// for additional tags.
//
// Every filesystem mutation is recorded in an in-memory undo log scoped to
// one Move call. Any failure after the first mutation replays the log in
// reverse, restoring the source file and deleting created links. The undo
// log is never persisted; it exists only for the duration of one call.
//
// Move never returns an error and never panics across its public boundary.
// Callers always receive a RelocationReport describing what succeeded, what
// failed, and whether rollback ran.
package relocate
