package relocate

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/filing"
)

// referenceMaker materializes one secondary filesystem reference.
// The concrete implementation is a platform-dependent strategy chain;
// tests substitute their own.
type referenceMaker interface {
	// CreateReference creates a reference at linkPath pointing at targetPath.
	// The created path may differ from linkPath (shortcut files gain a .lnk
	// suffix). Exhausting every strategy yields ok=false with the last error.
	CreateReference(linkPath, targetPath string) (createdPath string, kind filing.LinkKind, ok bool, err error)

	// PlannedKind reports the kind the first enabled strategy would produce.
	// Used for dry-run reporting.
	PlannedKind() filing.LinkKind
}

// linkStrategy is one capability in the chain. Strategies are evaluated in
// order; the first success terminates the chain.
type linkStrategy struct {
	kind    filing.LinkKind
	enabled bool
	create  func(linkPath, targetPath string) (string, error)
}

// linker implements referenceMaker as an ordered strategy chain.
//
// POSIX-like systems get a single symlink strategy (or none at all when
// symlinks are disallowed). Windows-like systems chain hardlink (same-volume
// only), symlink (privilege-dependent) and shortcut file, in that order.
type linker struct {
	strategies []linkStrategy
	logger     *zap.Logger
}

func newLinker(cfg Config, logger *zap.Logger) *linker {
	l := &linker{logger: logger}

	if runtime.GOOS == "windows" {
		l.strategies = []linkStrategy{
			{kind: filing.LinkKindHardlink, enabled: cfg.PreferHardlinkOnWindows, create: createHardlink},
			{kind: filing.LinkKindSymlink, enabled: cfg.AllowSymlink, create: createSymlink},
			{kind: filing.LinkKindShortcut, enabled: cfg.AllowShortcut, create: createShortcut},
		}
		return l
	}

	l.strategies = []linkStrategy{
		{kind: filing.LinkKindSymlink, enabled: cfg.AllowSymlink, create: createSymlink},
	}
	return l
}

func (l *linker) CreateReference(linkPath, targetPath string) (string, filing.LinkKind, bool, error) {
	var lastErr error

	for _, s := range l.strategies {
		if !s.enabled {
			continue
		}
		created, err := s.create(linkPath, targetPath)
		if err == nil {
			l.logger.Debug("created secondary reference",
				zap.String("path", created),
				zap.String("target", targetPath),
				zap.String("kind", string(s.kind)))
			return created, s.kind, true, nil
		}
		lastErr = err
		l.logger.Debug("link strategy failed, trying next",
			zap.String("kind", string(s.kind)), zap.Error(err))
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no link strategy enabled")
	}
	return linkPath, filing.LinkKindNone, false, lastErr
}

func (l *linker) PlannedKind() filing.LinkKind {
	for _, s := range l.strategies {
		if s.enabled {
			return s.kind
		}
	}
	return filing.LinkKindNone
}

// removeStale deletes any existing entry at path, including dangling
// symlinks, so a fresh reference can take its place.
func removeStale(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.Remove(path)
}

func createSymlink(linkPath, targetPath string) (string, error) {
	if err := removeStale(linkPath); err != nil {
		return "", fmt.Errorf("remove stale entry: %w", err)
	}
	if err := os.Symlink(targetPath, linkPath); err != nil {
		return "", fmt.Errorf("symlink: %w", err)
	}
	return linkPath, nil
}

// createHardlink links targetPath at linkPath. Hard links cannot span
// volumes; the resulting error simply moves the chain along.
func createHardlink(linkPath, targetPath string) (string, error) {
	if err := removeStale(linkPath); err != nil {
		return "", fmt.Errorf("remove stale entry: %w", err)
	}
	if err := os.Link(targetPath, linkPath); err != nil {
		return "", fmt.Errorf("hardlink: %w", err)
	}
	return linkPath, nil
}
