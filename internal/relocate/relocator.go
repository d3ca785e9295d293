package relocate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/filing"
)

// Config controls relocation behavior. All fields map to recognized
// configuration options.
type Config struct {
	DryRun                  bool
	CleanupEmptyDirs        bool
	AllowSymlink            bool
	AllowShortcut           bool
	PreferHardlinkOnWindows bool
}

// Relocator owns filesystem state transitions during a commit. One instance
// processes one document at a time; it holds no state between calls apart
// from the first-call dry-run notice guard.
type Relocator struct {
	cfg    Config
	logger *zap.Logger
	refs   referenceMaker

	// dryRunNoticed suppresses the repeated dry-run log line after the first
	// Move on this instance. Explicitly initialized at construction.
	dryRunNoticed bool
}

// New creates a Relocator with the platform link strategy chain.
func New(cfg Config, logger *zap.Logger) *Relocator {
	return &Relocator{
		cfg:           cfg,
		logger:        logger,
		refs:          newLinker(cfg, logger),
		dryRunNoticed: false,
	}
}

// Move relocates the plan's source file to its effective primary target and
// creates one secondary reference per additional tag. A single link failure
// does not abort the remaining links, but any failure anywhere rolls the
// whole operation back: the relocation is atomic from the caller's point of
// view.
//
// Move always returns a structured report; it never panics across this
// boundary. CompletedAt is set regardless of outcome.
func (r *Relocator) Move(plan filing.RelocationPlan, naming filing.NamingResult) (report filing.RelocationReport) {
	report = filing.RelocationReport{
		OriginalPath:      plan.OriginalPath,
		PrimaryTargetPath: effectiveTarget(plan, naming),
	}

	undo := &undoLog{}
	defer func() {
		if p := recover(); p != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("internal error: %v", p))
			r.finishRollback(undo, &report)
		}
		report.CompletedAt = time.Now()
	}()

	info, err := os.Lstat(plan.OriginalPath)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("source file missing: %v", err))
		return report
	}
	if !info.Mode().IsRegular() {
		report.Errors = append(report.Errors, fmt.Sprintf("source is not a regular file: %s", plan.OriginalPath))
		return report
	}

	if r.cfg.DryRun {
		return r.dryRunReport(plan, report)
	}

	if err := r.execute(plan, &report, undo); err != nil {
		r.logger.Error("relocation failed",
			zap.String("original_path", plan.OriginalPath), zap.Error(err))
		report.Errors = append(report.Errors, err.Error())
		r.finishRollback(undo, &report)
	}

	return report
}

// execute performs the move, link fan-out and optional directory cleanup.
// Every mutation is undo-logged before the next step runs.
func (r *Relocator) execute(plan filing.RelocationPlan, report *filing.RelocationReport, undo *undoLog) error {
	target := report.PrimaryTargetPath

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	finalTarget := resolveCollision(target)
	if finalTarget != target {
		r.logger.Warn("target occupied, using suffixed path",
			zap.String("planned", target), zap.String("final", finalTarget))
	}

	r.logger.Info("moving file",
		zap.String("from", plan.OriginalPath), zap.String("to", finalTarget))
	if err := moveFile(plan.OriginalPath, finalTarget); err != nil {
		return fmt.Errorf("move %s: %w", plan.OriginalPath, err)
	}
	undo.record(opMove, plan.OriginalPath, finalTarget)
	report.PrimaryTargetPath = finalTarget
	report.Moved = true

	linkFailures := 0
	for _, link := range plan.SecondaryLinks {
		outcome := r.createLink(link, finalTarget, undo)
		report.LinkOutcomes = append(report.LinkOutcomes, outcome)
		if !outcome.OK {
			linkFailures++
		}
	}

	if r.cfg.CleanupEmptyDirs {
		r.cleanupEmptyDirs(filepath.Dir(plan.OriginalPath), undo)
	}

	if linkFailures > 0 {
		return fmt.Errorf("%d of %d secondary links failed", linkFailures, len(plan.SecondaryLinks))
	}

	return nil
}

// createLink materializes one secondary reference. The link shares the
// primary file's final basename regardless of what the plan named it.
func (r *Relocator) createLink(link filing.SecondaryLink, finalTarget string, undo *undoLog) filing.LinkOutcome {
	linkPath := filepath.Join(filepath.Dir(link.TargetPath), filepath.Base(finalTarget))

	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return filing.LinkOutcome{
			Path:  linkPath,
			Kind:  filing.LinkKindNone,
			OK:    false,
			Error: fmt.Sprintf("create link directory: %v", err),
		}
	}

	r.logger.Info("creating secondary reference",
		zap.String("path", linkPath),
		zap.String("target", finalTarget),
		zap.String("tag", link.Tag))

	created, kind, ok, err := r.refs.CreateReference(linkPath, finalTarget)
	outcome := filing.LinkOutcome{Path: created, Kind: kind, OK: ok}
	if ok {
		undo.record(opLink, "", created)
	} else {
		outcome.Error = err.Error()
		r.logger.Error("secondary reference failed",
			zap.String("path", linkPath), zap.Error(err))
	}
	return outcome
}

// cleanupEmptyDirs removes now-empty directories walking upward from start,
// stopping at the first non-empty ancestor. Failures here are warnings, not
// commit failures.
func (r *Relocator) cleanupEmptyDirs(start string, undo *undoLog) {
	curr := start
	for {
		entries, err := os.ReadDir(curr)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(curr); err != nil {
			r.logger.Warn("empty directory cleanup stopped",
				zap.String("dir", curr), zap.Error(err))
			return
		}
		undo.record(opRmdir, "", curr)
		r.logger.Info("removed empty directory", zap.String("dir", curr))

		parent := filepath.Dir(curr)
		if parent == curr {
			return
		}
		curr = parent
	}
}

// dryRunReport logs the intended operations without touching the filesystem
// and claims logical success, with every link marked as a dry-run no-op.
func (r *Relocator) dryRunReport(plan filing.RelocationPlan, report filing.RelocationReport) filing.RelocationReport {
	if !r.dryRunNoticed {
		r.logger.Info("dry-run mode: no filesystem changes will be made")
		r.dryRunNoticed = true
	}

	r.logger.Info("dry-run: would move file",
		zap.String("from", plan.OriginalPath), zap.String("to", report.PrimaryTargetPath))

	plannedKind := r.refs.PlannedKind()
	for _, link := range plan.SecondaryLinks {
		linkPath := filepath.Join(filepath.Dir(link.TargetPath), filepath.Base(report.PrimaryTargetPath))
		r.logger.Info("dry-run: would create secondary reference",
			zap.String("path", linkPath), zap.String("tag", link.Tag))
		report.LinkOutcomes = append(report.LinkOutcomes, filing.LinkOutcome{
			Path:   linkPath,
			Kind:   plannedKind,
			OK:     true,
			DryRun: true,
		})
	}

	report.Moved = true
	return report
}

// finishRollback replays the undo log and folds its failures into the
// report. Moved is cleared: after rollback the file is back at its source.
func (r *Relocator) finishRollback(undo *undoLog, report *filing.RelocationReport) {
	if undo.empty() {
		return
	}
	failures := undo.rollback(r.logger)
	report.Errors = append(report.Errors, failures...)
	report.RolledBack = true
	report.Moved = false
}

// effectiveTarget resolves the primary target: the naming collaborator's
// final path wins when present; a bare final filename lands in the planned
// target's directory.
func effectiveTarget(plan filing.RelocationPlan, naming filing.NamingResult) string {
	if naming.FinalPath != "" {
		return naming.FinalPath
	}
	if naming.FinalFilename != "" {
		return filepath.Join(filepath.Dir(plan.PrimaryTargetPath), naming.FinalFilename)
	}
	return plan.PrimaryTargetPath
}

// resolveCollision probes name_1, name_2, ... until a free path is found.
func resolveCollision(path string) string {
	if _, err := os.Lstat(path); err != nil {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Lstat(candidate); err != nil {
			return candidate
		}
	}
}
