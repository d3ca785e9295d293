package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sortd/sortd/internal/filing"
)

// AuditFilter narrows an audit ledger query. Zero-value fields are ignored.
type AuditFilter struct {
	FilePath string
	Category string
}

const auditColumns = `id, file_path, old_path, new_path, old_filename, new_filename,
	category, tags, confidence_score, rules_applied, processing_time,
	operator, status, error_message, created_at`

const statusColumns = `file_path, file_hash, last_modified, last_classified,
	category, tags, status, needs_review, created_at, updated_at`

// AuditRecords returns ledger rows matching the filter, newest first,
// truncated to limit. Rows with equal timestamps tie-break on id descending
// so results stay deterministic (operation IDs are UUIDv7, time-ordered).
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) AuditRecords(ctx context.Context, filter AuditFilter, limit int) ([]filing.AuditRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", auditColumns, s.auditTable)
	var args []any

	where := ""
	if filter.FilePath != "" {
		where = " WHERE file_path = ?"
		args = append(args, filter.FilePath)
	}
	if filter.Category != "" {
		if where == "" {
			where = " WHERE category = ?"
		} else {
			where += " AND category = ?"
		}
		args = append(args, filter.Category)
	}

	query += where + " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	records := []filing.AuditRecord{}
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}

// AuditRecord retrieves a single ledger row by operation ID.
// Returns nil (no error) when no row exists.
func (s *Store) AuditRecord(ctx context.Context, id string) (*filing.AuditRecord, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = ?", auditColumns, s.auditTable), id)

	rec, err := scanAuditRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FileStatus retrieves the status row for a file path.
// Returns nil (no error) when no row exists.
func (s *Store) FileStatus(ctx context.Context, filePath string) (*filing.FileStatus, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE file_path = ?", statusColumns, s.statusTable), filePath)

	fs, err := scanFileStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

// FilesNeedingReview returns every status row flagged for manual review,
// most recently updated first.
//
// Returns an empty slice (not nil) when nothing is flagged.
func (s *Store) FilesNeedingReview(ctx context.Context) ([]filing.FileStatus, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE needs_review = 1
		ORDER BY updated_at DESC, file_path ASC
	`, statusColumns, s.statusTable))
	if err != nil {
		return nil, fmt.Errorf("query files needing review: %w", err)
	}
	defer rows.Close()

	statuses := []filing.FileStatus{}
	for rows.Next() {
		fs, err := scanFileStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files needing review: %w", err)
	}

	return statuses, nil
}

// Statistics aggregates both tables. SuccessRate is defined as 0 when no
// operations have been recorded.
func (s *Store) Statistics(ctx context.Context) (filing.Statistics, error) {
	var stats filing.Statistics

	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s", s.auditTable)).Scan(&stats.TotalOperations)
	if err != nil {
		return filing.Statistics{}, fmt.Errorf("count operations: %w", err)
	}

	err = s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE status = ?", s.auditTable),
		filing.AuditStatusSuccess).Scan(&stats.SuccessfulOperations)
	if err != nil {
		return filing.Statistics{}, fmt.Errorf("count successful operations: %w", err)
	}

	if stats.TotalOperations > 0 {
		stats.SuccessRate = float64(stats.SuccessfulOperations) / float64(stats.TotalOperations)
	}

	err = s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s", s.statusTable)).Scan(&stats.TotalFiles)
	if err != nil {
		return filing.Statistics{}, fmt.Errorf("count files: %w", err)
	}

	err = s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE needs_review = 1", s.statusTable)).Scan(&stats.FilesNeedingReview)
	if err != nil {
		return filing.Statistics{}, fmt.Errorf("count files needing review: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT category, COUNT(*) FROM %s GROUP BY category", s.statusTable))
	if err != nil {
		return filing.Statistics{}, fmt.Errorf("query category distribution: %w", err)
	}
	defer rows.Close()

	stats.CategoryDistribution = map[string]int{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return filing.Statistics{}, fmt.Errorf("scan category distribution: %w", err)
		}
		stats.CategoryDistribution[category] = count
	}
	if err := rows.Err(); err != nil {
		return filing.Statistics{}, fmt.Errorf("iterate category distribution: %w", err)
	}

	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanAuditRecord(sc scanner) (filing.AuditRecord, error) {
	var rec filing.AuditRecord
	var tagsJSON, rulesJSON string

	err := sc.Scan(
		&rec.ID,
		&rec.FilePath,
		&rec.OldPath,
		&rec.NewPath,
		&rec.OldFilename,
		&rec.NewFilename,
		&rec.Category,
		&tagsJSON,
		&rec.ConfidenceScore,
		&rulesJSON,
		&rec.ProcessingTime,
		&rec.Operator,
		&rec.Status,
		&rec.ErrorMessage,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filing.AuditRecord{}, err
		}
		return filing.AuditRecord{}, fmt.Errorf("scan audit record: %w", err)
	}

	if rec.Tags, err = unmarshalStringList(tagsJSON); err != nil {
		return filing.AuditRecord{}, fmt.Errorf("scan audit record: %w", err)
	}
	if rec.RulesApplied, err = unmarshalStringList(rulesJSON); err != nil {
		return filing.AuditRecord{}, fmt.Errorf("scan audit record: %w", err)
	}

	return rec, nil
}

func scanFileStatus(sc scanner) (filing.FileStatus, error) {
	var fs filing.FileStatus
	var tagsJSON string

	err := sc.Scan(
		&fs.FilePath,
		&fs.FileHash,
		&fs.LastModified,
		&fs.LastClassified,
		&fs.Category,
		&tagsJSON,
		&fs.Status,
		&fs.NeedsReview,
		&fs.CreatedAt,
		&fs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filing.FileStatus{}, err
		}
		return filing.FileStatus{}, fmt.Errorf("scan file status: %w", err)
	}

	if fs.Tags, err = unmarshalStringList(tagsJSON); err != nil {
		return filing.FileStatus{}, fmt.Errorf("scan file status: %w", err)
	}

	return fs, nil
}
