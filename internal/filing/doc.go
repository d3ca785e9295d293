// Package filing provides the shared data model for the commit stage.
//
// This package contains type definitions only. All other internal packages
// import filing; filing imports nothing internal. This keeps it the
// foundational layer with no circular dependencies.
//
// The types fall into three groups:
//   - Inputs produced by external collaborators: RelocationPlan, NamingResult,
//     DocumentPayload, ClassificationResult.
//   - Reports produced by the core: RelocationReport, CommitReport.
//   - Persisted rows: AuditRecord (append-only), FileStatus (upsert).
//
// All JSON tags use snake_case.
package filing
