package store

import (
	"context"
	"fmt"

	"github.com/sortd/sortd/internal/filing"
)

// InsertAuditRecord appends one row to the audit ledger.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a retried write with the
// same operation ID is silently ignored. Rows are never updated after insert.
func (s *Store) InsertAuditRecord(ctx context.Context, rec filing.AuditRecord) error {
	tagsJSON, err := marshalStringList(rec.Tags)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	rulesJSON, err := marshalStringList(rec.RulesApplied)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(id, file_path, old_path, new_path, old_filename, new_filename,
		 category, tags, confidence_score, rules_applied, processing_time,
		 operator, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.auditTable),
		rec.ID,
		rec.FilePath,
		rec.OldPath,
		rec.NewPath,
		rec.OldFilename,
		rec.NewFilename,
		rec.Category,
		tagsJSON,
		rec.ConfidenceScore,
		rulesJSON,
		rec.ProcessingTime,
		rec.Operator,
		rec.Status,
		rec.ErrorMessage,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

// UpsertFileStatus writes the status row for a file path, replacing any prior
// row for that path. created_at is preserved across upserts; every other
// column reflects the newest commit.
func (s *Store) UpsertFileStatus(ctx context.Context, fs filing.FileStatus) error {
	tagsJSON, err := marshalStringList(fs.Tags)
	if err != nil {
		return fmt.Errorf("upsert file status: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(file_path, file_hash, last_modified, last_classified,
		 category, tags, status, needs_review, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash = excluded.file_hash,
			last_modified = excluded.last_modified,
			last_classified = excluded.last_classified,
			category = excluded.category,
			tags = excluded.tags,
			status = excluded.status,
			needs_review = excluded.needs_review,
			updated_at = excluded.updated_at
	`, s.statusTable),
		fs.FilePath,
		fs.FileHash,
		fs.LastModified.UTC(),
		fs.LastClassified.UTC(),
		fs.Category,
		tagsJSON,
		fs.Status,
		fs.NeedsReview,
		fs.CreatedAt.UTC(),
		fs.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert file status: %w", err)
	}

	return nil
}
