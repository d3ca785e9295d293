// Package semindex maintains the semantic document index: a local,
// text-searchable record of every filed document. It uses SQLite FTS5 in its
// own database file, separate from the audit/status repository, so either
// can fail without taking the other down.
//
// The commit stage only inserts; querying the index belongs to other tools.
package semindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS documents USING fts5(
	content,
	file_path UNINDEXED,
	original_path UNINDEXED,
	category UNINDEXED,
	tags UNINDEXED,
	confidence_score UNINDEXED,
	file_type UNINDEXED,
	file_size UNINDEXED,
	indexed_at UNINDEXED
);
`

// Document is one entry in the index.
type Document struct {
	Content         string
	FilePath        string
	OriginalPath    string
	Category        string
	Tags            []string
	ConfidenceScore float64
	FileType        string
	FileSize        int64
	IndexedAt       time.Time
}

// Index is the FTS5-backed document index.
type Index struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the index database at path, creating parent
// directories as needed. Idempotent.
func Open(path string, logger *zap.Logger) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open semantic index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply semantic index schema: %w", err)
	}

	return &Index{db: db, logger: logger}, nil
}

// Close closes the index database.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Insert adds one document record. Tags are stored as a comma-joined string
// alongside the searchable content.
func (ix *Index) Insert(ctx context.Context, doc Document) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO documents
		(content, file_path, original_path, category, tags,
		 confidence_score, file_type, file_size, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.Content,
		doc.FilePath,
		doc.OriginalPath,
		doc.Category,
		strings.Join(doc.Tags, ","),
		doc.ConfidenceScore,
		doc.FileType,
		doc.FileSize,
		doc.IndexedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	ix.logger.Debug("document indexed", zap.String("file_path", doc.FilePath))
	return nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
