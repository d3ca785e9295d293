// Package commit fans a single document commit out to four independent
// persistence operations: the similarity store, the semantic index, the
// audit ledger and the file status table.
//
// Each write is best-effort; the failure of any one store never blocks the
// other three from being attempted. The aggregated CommitReport makes every
// sub-outcome independently observable, so callers can distinguish "nothing
// moved" from "moved, but the similarity store was unreachable".
//
// The coordinator also exposes the query side of the audit/status
// repository: history lookup, pending-review lookup and aggregate
// statistics.
package commit
