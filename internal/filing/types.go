package filing

import "time"

// RelocationPlan is the path planner's decision for one document: where the
// primary copy goes and which secondary references to materialize, one per
// additional tag. Immutable input.
type RelocationPlan struct {
	OriginalPath      string          `json:"original_path" yaml:"original_path" validate:"required"`
	PrimaryTargetPath string          `json:"primary_target_path" yaml:"primary_target_path" validate:"required"`
	SecondaryLinks    []SecondaryLink `json:"secondary_links,omitempty" yaml:"secondary_links,omitempty"`
}

// SecondaryLink names one extra filesystem reference to create for a tag.
type SecondaryLink struct {
	TargetPath string `json:"target_path" yaml:"target_path" validate:"required"`
	Tag        string `json:"tag" yaml:"tag"`
}

// NamingResult is the naming collaborator's override for the primary target.
// A zero value means "keep the plan's target".
type NamingResult struct {
	FinalPath     string `json:"final_path,omitempty" yaml:"final_path,omitempty"`
	FinalFilename string `json:"final_filename,omitempty" yaml:"final_filename,omitempty"`
}

// LinkKind identifies the mechanism that produced a secondary reference.
type LinkKind string

const (
	LinkKindSymlink  LinkKind = "symlink"
	LinkKindHardlink LinkKind = "hardlink"
	LinkKindShortcut LinkKind = "shortcut"
	LinkKindNone     LinkKind = "none"
)

// LinkOutcome records the result of one secondary link creation attempt.
type LinkOutcome struct {
	Path   string   `json:"path"`
	Kind   LinkKind `json:"kind"`
	OK     bool     `json:"ok"`
	DryRun bool     `json:"dry_run,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// RelocationReport is created once per commit attempt and is immutable after
// the Relocator returns it. Errors holds every failure encountered, including
// rollback failures; RolledBack reports whether rollback itself completed.
type RelocationReport struct {
	OriginalPath      string        `json:"original_path"`
	PrimaryTargetPath string        `json:"primary_target_path"`
	LinkOutcomes      []LinkOutcome `json:"link_outcomes,omitempty"`
	Moved             bool          `json:"moved"`
	RolledBack        bool          `json:"rolled_back"`
	Errors            []string      `json:"errors,omitempty"`
	CompletedAt       time.Time     `json:"completed_at"`
}

// FileMetadata carries the parser's facts about the physical file.
type FileMetadata struct {
	FileType string `json:"file_type,omitempty" yaml:"file_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty" yaml:"file_size,omitempty"`
}

// DocumentPayload is the parsed document as the embedding pipeline produced
// it. Summary is used as text fallback when full text extraction failed.
type DocumentPayload struct {
	Text      string       `json:"text,omitempty" yaml:"text,omitempty"`
	Summary   string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Embedding []float32    `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	Metadata  FileMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ClassificationResult is the classifier's decision for one document.
type ClassificationResult struct {
	Category        string   `json:"category" yaml:"category" validate:"required"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	ConfidenceScore float64  `json:"confidence_score" yaml:"confidence_score" validate:"gte=0,lte=1"`
	AppliedRules    []string `json:"applied_rules,omitempty" yaml:"applied_rules,omitempty"`
}

// Store outcome reason codes. A store write that was skipped carries one of
// these instead of an error.
const (
	ReasonFileNotMoved     = "file_not_moved"
	ReasonNoEmbedding      = "no_embedding"
	ReasonNoContent        = "no_content"
	ReasonDisabled         = "disabled"
	ReasonNoFilePath       = "no_file_path"
	ReasonStoreUnavailable = "store_unavailable"
)

// StoreOutcome is the result of one of the four independent persistence
// writes. Reason is set when the write was skipped; Error when it was
// attempted and failed.
type StoreOutcome struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Accepted reports whether the outcome counts as success for aggregation.
// A write skipped because the subsystem is disabled is not a failure.
func (o StoreOutcome) Accepted() bool {
	return o.Success || o.Reason == ReasonDisabled
}

// CommitReport aggregates the four store outcomes for one commit attempt.
// Success is the logical AND of the four, with disabled counting as success.
type CommitReport struct {
	OperationID     string       `json:"operation_id"`
	Success         bool         `json:"success"`
	SimilarityStore StoreOutcome `json:"similarity_store"`
	SemanticIndex   StoreOutcome `json:"semantic_index"`
	AuditLog        StoreOutcome `json:"audit_log"`
	StatusUpdate    StoreOutcome `json:"status_update"`
	Timestamp       time.Time    `json:"timestamp"`
}

// Audit row status values.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// AuditRecord is one append-only row in the audit ledger, keyed by the
// operation ID. Never updated after insert; one row per commit attempt,
// including failed ones.
type AuditRecord struct {
	ID              string    `json:"id"`
	FilePath        string    `json:"file_path"`
	OldPath         string    `json:"old_path"`
	NewPath         string    `json:"new_path"`
	OldFilename     string    `json:"old_filename"`
	NewFilename     string    `json:"new_filename"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags,omitempty"`
	ConfidenceScore float64   `json:"confidence_score"`
	RulesApplied    []string  `json:"rules_applied,omitempty"`
	ProcessingTime  float64   `json:"processing_time"`
	Operator        string    `json:"operator"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FileStatusClassified is the status value written for every commit.
const FileStatusClassified = "classified"

// FileStatus is the per-file row keyed by the current path. The newest commit
// replaces the prior row for that path. NeedsReview is a snapshot of
// confidence < review threshold at write time, not recomputed later.
type FileStatus struct {
	FilePath       string    `json:"file_path"`
	FileHash       string    `json:"file_hash"`
	LastModified   time.Time `json:"last_modified"`
	LastClassified time.Time `json:"last_classified"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags,omitempty"`
	Status         string    `json:"status"`
	NeedsReview    bool      `json:"needs_review"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Statistics summarizes both repository tables.
type Statistics struct {
	TotalOperations      int            `json:"total_operations"`
	SuccessfulOperations int            `json:"successful_operations"`
	SuccessRate          float64        `json:"success_rate"`
	TotalFiles           int            `json:"total_files"`
	FilesNeedingReview   int            `json:"files_needing_review"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}
