package commit

import (
	"context"
	"fmt"

	"github.com/sortd/sortd/internal/filing"
	"github.com/sortd/sortd/internal/store"
)

// AuditFilter narrows a history query. Zero-value fields are ignored.
type AuditFilter struct {
	FilePath string
	Category string
}

// GetAuditRecords returns ledger rows matching the filter, newest first,
// truncated to limit.
func (c *Coordinator) GetAuditRecords(ctx context.Context, filter AuditFilter, limit int) ([]filing.AuditRecord, error) {
	return c.store.AuditRecords(ctx, store.AuditFilter{
		FilePath: filter.FilePath,
		Category: filter.Category,
	}, limit)
}

// GetFileStatus returns the status row for a path, or nil when none exists.
func (c *Coordinator) GetFileStatus(ctx context.Context, filePath string) (*filing.FileStatus, error) {
	return c.store.FileStatus(ctx, filePath)
}

// GetFilesNeedingReview returns every file flagged for manual review.
func (c *Coordinator) GetFilesNeedingReview(ctx context.Context) ([]filing.FileStatus, error) {
	return c.store.FilesNeedingReview(ctx)
}

// GetStatistics aggregates both repository tables.
func (c *Coordinator) GetStatistics(ctx context.Context) (filing.Statistics, error) {
	return c.store.Statistics(ctx)
}

// RollbackResult reports the outcome of a rollback request.
type RollbackResult struct {
	Found   bool                `json:"found"`
	Record  *filing.AuditRecord `json:"record,omitempty"`
	Message string              `json:"message,omitempty"`
}

// RollbackOperation looks up the audit row for an operation ID and reports
// whether one was found. It performs no compensating filesystem or store
// action; reversing a commit remains a manual step.
func (c *Coordinator) RollbackOperation(ctx context.Context, operationID string) (RollbackResult, error) {
	rec, err := c.store.AuditRecord(ctx, operationID)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("rollback lookup: %w", err)
	}
	if rec == nil {
		return RollbackResult{Found: false}, nil
	}
	return RollbackResult{
		Found:   true,
		Record:  rec,
		Message: "operation found; file moves must be reversed manually",
	}, nil
}
