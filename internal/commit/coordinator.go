package commit

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/filing"
	"github.com/sortd/sortd/internal/semindex"
	"github.com/sortd/sortd/internal/store"
	"github.com/sortd/sortd/internal/vector"
)

// Operator recorded on every audit row written by the automatic pipeline.
const Operator = "auto"

// SimilarityStore is the vector-search collaborator.
type SimilarityStore interface {
	Upsert(ctx context.Context, rec vector.Record) error
}

// SemanticIndex is the text-searchable document index collaborator.
type SemanticIndex interface {
	Insert(ctx context.Context, doc semindex.Document) error
}

// Config controls coordinator behavior.
type Config struct {
	// SemanticIndexEnabled gates the semantic index write; a disabled index
	// counts as success for aggregation.
	SemanticIndexEnabled bool

	// ReviewThreshold is the confidence score below which a file is flagged
	// for manual review.
	ReviewThreshold float64
}

// Coordinator owns the audit/status/similarity/index writes for a commit.
// It holds no filesystem responsibility; that belongs to the Relocator.
type Coordinator struct {
	store   *store.Store
	vectors SimilarityStore
	index   SemanticIndex
	cfg     Config
	logger  *zap.Logger
}

// New creates a Coordinator. vectors may be nil when no similarity store is
// configured; index may be nil when the semantic index is disabled.
func New(st *store.Store, vectors SimilarityStore, index SemanticIndex, cfg Config, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:   st,
		vectors: vectors,
		index:   index,
		cfg:     cfg,
		logger:  logger,
	}
}

// Request carries everything one commit needs to be recorded.
type Request struct {
	// OperationID correlates this commit with the relocation attempt that
	// produced it. When empty, Commit mints a fresh one.
	OperationID string

	Report         filing.RelocationReport
	Payload        filing.DocumentPayload
	Classification filing.ClassificationResult

	// Elapsed is the collaborators' total processing time for the document.
	Elapsed time.Duration
}

// NewOperationID mints a fresh time-ordered operation ID.
func NewOperationID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Commit performs the four independent writes and aggregates their
// outcomes. It can also be invoked for status-only updates when no physical
// move occurred: the similarity write is then skipped with reason
// file_not_moved and the audit row records status "failed".
//
// Commit never returns an error; every failure is a sub-outcome on the
// returned report.
func (c *Coordinator) Commit(ctx context.Context, req Request) filing.CommitReport {
	opID := req.OperationID
	if opID == "" {
		opID = NewOperationID()
	}

	report := filing.CommitReport{
		OperationID: opID,
		Timestamp:   time.Now(),
	}

	report.SimilarityStore = c.writeSimilarity(ctx, req)
	report.SemanticIndex = c.writeSemanticIndex(ctx, req)
	report.AuditLog = c.writeAuditLog(ctx, opID, req)
	report.StatusUpdate = c.writeStatus(ctx, req)

	report.Success = report.SimilarityStore.Accepted() &&
		report.SemanticIndex.Accepted() &&
		report.AuditLog.Accepted() &&
		report.StatusUpdate.Accepted()

	if report.Success {
		c.logger.Info("commit recorded", zap.String("operation_id", opID))
	} else {
		c.logger.Warn("commit partially recorded",
			zap.String("operation_id", opID),
			zap.Any("similarity_store", report.SimilarityStore),
			zap.Any("semantic_index", report.SemanticIndex),
			zap.Any("audit_log", report.AuditLog),
			zap.Any("status_update", report.StatusUpdate))
	}

	return report
}

func (c *Coordinator) writeSimilarity(ctx context.Context, req Request) filing.StoreOutcome {
	if !req.Report.Moved {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonFileNotMoved}
	}
	if len(req.Payload.Embedding) == 0 {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonNoEmbedding}
	}
	if c.vectors == nil {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonStoreUnavailable}
	}

	rec := vector.Record{
		ID:        NewOperationID(),
		Embedding: req.Payload.Embedding,
		Document:  documentText(req.Payload),
		Metadata: map[string]any{
			"file_path":        req.Report.PrimaryTargetPath,
			"original_path":    req.Report.OriginalPath,
			"category":         req.Classification.Category,
			"tags":             strings.Join(req.Classification.Tags, ","),
			"confidence_score": req.Classification.ConfidenceScore,
			"file_type":        req.Payload.Metadata.FileType,
			"file_size":        req.Payload.Metadata.FileSize,
			"processing_time":  time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := c.vectors.Upsert(ctx, rec); err != nil {
		c.logger.Error("similarity store write failed", zap.Error(err))
		return filing.StoreOutcome{Success: false, Error: err.Error()}
	}
	return filing.StoreOutcome{Success: true}
}

func (c *Coordinator) writeSemanticIndex(ctx context.Context, req Request) filing.StoreOutcome {
	if !c.cfg.SemanticIndexEnabled || c.index == nil {
		return filing.StoreOutcome{Success: true, Reason: filing.ReasonDisabled}
	}
	if !req.Report.Moved {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonFileNotMoved}
	}

	text := documentText(req.Payload)
	if text == "" {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonNoContent}
	}

	doc := semindex.Document{
		Content:         text,
		FilePath:        req.Report.PrimaryTargetPath,
		OriginalPath:    req.Report.OriginalPath,
		Category:        req.Classification.Category,
		Tags:            req.Classification.Tags,
		ConfidenceScore: req.Classification.ConfidenceScore,
		FileType:        req.Payload.Metadata.FileType,
		FileSize:        req.Payload.Metadata.FileSize,
		IndexedAt:       time.Now(),
	}

	if err := c.index.Insert(ctx, doc); err != nil {
		c.logger.Error("semantic index write failed", zap.Error(err))
		return filing.StoreOutcome{Success: false, Error: err.Error()}
	}
	return filing.StoreOutcome{Success: true}
}

func (c *Coordinator) writeAuditLog(ctx context.Context, opID string, req Request) filing.StoreOutcome {
	status := filing.AuditStatusFailed
	if req.Report.Moved {
		status = filing.AuditStatusSuccess
	}

	rec := filing.AuditRecord{
		ID:              opID,
		FilePath:        req.Report.OriginalPath,
		OldPath:         req.Report.OriginalPath,
		NewPath:         req.Report.PrimaryTargetPath,
		OldFilename:     filepath.Base(req.Report.OriginalPath),
		NewFilename:     filepath.Base(req.Report.PrimaryTargetPath),
		Category:        req.Classification.Category,
		Tags:            req.Classification.Tags,
		ConfidenceScore: req.Classification.ConfidenceScore,
		RulesApplied:    req.Classification.AppliedRules,
		ProcessingTime:  req.Elapsed.Seconds(),
		Operator:        Operator,
		Status:          status,
		ErrorMessage:    strings.Join(req.Report.Errors, "; "),
		CreatedAt:       time.Now(),
	}

	if err := c.store.InsertAuditRecord(ctx, rec); err != nil {
		c.logger.Error("audit log write failed", zap.Error(err))
		return filing.StoreOutcome{Success: false, Error: err.Error()}
	}
	return filing.StoreOutcome{Success: true}
}

func (c *Coordinator) writeStatus(ctx context.Context, req Request) filing.StoreOutcome {
	filePath := req.Report.PrimaryTargetPath
	if !req.Report.Moved {
		filePath = req.Report.OriginalPath
	}
	if filePath == "" {
		return filing.StoreOutcome{Success: false, Reason: filing.ReasonNoFilePath}
	}

	now := time.Now()
	fingerprint, lastModified := fileFingerprint(filePath, now)

	fs := filing.FileStatus{
		FilePath:       filePath,
		FileHash:       fingerprint,
		LastModified:   lastModified,
		LastClassified: now,
		Category:       req.Classification.Category,
		Tags:           req.Classification.Tags,
		Status:         filing.FileStatusClassified,
		NeedsReview:    req.Classification.ConfidenceScore < c.cfg.ReviewThreshold,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.store.UpsertFileStatus(ctx, fs); err != nil {
		c.logger.Error("file status write failed", zap.Error(err))
		return filing.StoreOutcome{Success: false, Error: err.Error()}
	}
	return filing.StoreOutcome{Success: true}
}

// documentText returns the payload's extractable text, falling back to the
// summary when full extraction produced nothing.
func documentText(payload filing.DocumentPayload) string {
	if payload.Text != "" {
		return payload.Text
	}
	return payload.Summary
}

// fileFingerprint computes the content fingerprint for the status row.
// Modification time is the accepted proxy; a file that cannot be stat'd
// (e.g. dry-run target) gets an empty fingerprint and now as last-modified.
func fileFingerprint(path string, now time.Time) (string, time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return "", now
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 10), info.ModTime()
}
