package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sortd/sortd/internal/filing"
)

// Text renderers for human output. JSON output bypasses these entirely.

func renderTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func renderOutcome(name string, o filing.StoreOutcome) string {
	switch {
	case o.Success && o.Reason != "":
		return fmt.Sprintf("  %-16s ok (%s)", name, o.Reason)
	case o.Success:
		return fmt.Sprintf("  %-16s ok", name)
	case o.Reason != "":
		return fmt.Sprintf("  %-16s skipped (%s)", name, o.Reason)
	default:
		return fmt.Sprintf("  %-16s failed: %s", name, o.Error)
	}
}

func renderCommitResult(rel filing.RelocationReport, com filing.CommitReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "operation %s\n", com.OperationID)
	fmt.Fprintf(&b, "  %-16s %s\n", "source", rel.OriginalPath)
	fmt.Fprintf(&b, "  %-16s %s\n", "target", rel.PrimaryTargetPath)
	fmt.Fprintf(&b, "  %-16s %t\n", "moved", rel.Moved)
	if rel.RolledBack {
		fmt.Fprintf(&b, "  %-16s true\n", "rolled back")
	}
	for _, link := range rel.LinkOutcomes {
		state := "ok"
		if link.DryRun {
			state = "dry-run"
		} else if !link.OK {
			state = "failed: " + link.Error
		}
		fmt.Fprintf(&b, "  link %-11s %s (%s)\n", state, link.Path, link.Kind)
	}
	for _, e := range rel.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}

	fmt.Fprintf(&b, "stores (success=%t)\n", com.Success)
	b.WriteString(renderOutcome("similarity", com.SimilarityStore) + "\n")
	b.WriteString(renderOutcome("semantic index", com.SemanticIndex) + "\n")
	b.WriteString(renderOutcome("audit log", com.AuditLog) + "\n")
	b.WriteString(renderOutcome("status", com.StatusUpdate))

	return b.String()
}

func renderAuditRecords(records []filing.AuditRecord) string {
	if len(records) == 0 {
		return "no audit records"
	}

	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", renderTime(rec.CreatedAt), rec.Status, rec.ID)
		fmt.Fprintf(&b, "  %s -> %s\n", rec.OldPath, rec.NewPath)
		fmt.Fprintf(&b, "  category=%s confidence=%.2f tags=%s\n",
			rec.Category, rec.ConfidenceScore, strings.Join(rec.Tags, ","))
		if rec.ErrorMessage != "" {
			fmt.Fprintf(&b, "  error: %s\n", rec.ErrorMessage)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFileStatus(fs filing.FileStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", fs.FilePath)
	fmt.Fprintf(&b, "  category=%s status=%s needs_review=%t\n",
		fs.Category, fs.Status, fs.NeedsReview)
	fmt.Fprintf(&b, "  tags=%s\n", strings.Join(fs.Tags, ","))
	fmt.Fprintf(&b, "  classified=%s updated=%s",
		renderTime(fs.LastClassified), renderTime(fs.UpdatedAt))
	return b.String()
}

func renderFileStatuses(statuses []filing.FileStatus) string {
	if len(statuses) == 0 {
		return "no files need review"
	}
	parts := make([]string, 0, len(statuses))
	for _, fs := range statuses {
		parts = append(parts, renderFileStatus(fs))
	}
	return strings.Join(parts, "\n")
}

func renderStatistics(stats filing.Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "operations:     %d total, %d successful (%.1f%%)\n",
		stats.TotalOperations, stats.SuccessfulOperations, stats.SuccessRate*100)
	fmt.Fprintf(&b, "files:          %d total, %d needing review\n",
		stats.TotalFiles, stats.FilesNeedingReview)
	b.WriteString("categories:")

	categories := make([]string, 0, len(stats.CategoryDistribution))
	for category := range stats.CategoryDistribution {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&b, "\n  %-20s %d", category, stats.CategoryDistribution[category])
	}
	return b.String()
}
