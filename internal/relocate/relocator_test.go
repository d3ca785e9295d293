package relocate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/filing"
	"github.com/sortd/sortd/internal/testutil"
)

func newTestRelocator(t *testing.T, cfg Config) *Relocator {
	t.Helper()
	return New(cfg, zap.NewNop())
}

func TestMove_PrimaryOnly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "inbox", "report.pdf")
	dst := filepath.Join(dir, "archive", "finance", "report.pdf")
	testutil.WriteFile(t, src, "quarterly numbers")

	r := newTestRelocator(t, Config{AllowSymlink: true})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	assert.True(t, report.Moved)
	assert.False(t, report.RolledBack)
	assert.Equal(t, dst, report.PrimaryTargetPath)
	assert.False(t, report.CompletedAt.IsZero())

	assert.False(t, testutil.Exists(src), "source should be gone")
	assert.Equal(t, "quarterly numbers", testutil.ReadFile(t, dst))
}

func TestMove_TwoSecondaryLinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "inbox", "report.pdf")
	dst := filepath.Join(dir, "archive", "finance", "report.pdf")
	testutil.WriteFile(t, src, "content")

	r := newTestRelocator(t, Config{AllowSymlink: true})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
		SecondaryLinks: []filing.SecondaryLink{
			{TargetPath: filepath.Join(dir, "tags", "urgent", "report.pdf"), Tag: "urgent"},
			{TargetPath: filepath.Join(dir, "tags", "2024", "report.pdf"), Tag: "2024"},
		},
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	assert.True(t, report.Moved)
	require.Len(t, report.LinkOutcomes, 2)
	for _, outcome := range report.LinkOutcomes {
		assert.True(t, outcome.OK)
		assert.Equal(t, filing.LinkKindSymlink, outcome.Kind)
		assert.True(t, testutil.Exists(outcome.Path))

		resolved, err := os.Readlink(outcome.Path)
		require.NoError(t, err)
		assert.Equal(t, dst, resolved)
	}
}

func TestMove_NamingOverridesPlan(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "scan_001.pdf")
	testutil.WriteFile(t, src, "x")

	named := filepath.Join(dir, "out", "2024-03 Invoice ACME.pdf")
	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: filepath.Join(dir, "out", "scan_001.pdf"),
	}, filing.NamingResult{FinalPath: named})

	require.Empty(t, report.Errors)
	assert.Equal(t, named, report.PrimaryTargetPath)
	assert.True(t, testutil.Exists(named))
}

func TestMove_FinalFilenameLandsInPlannedDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "scan.pdf")
	testutil.WriteFile(t, src, "x")

	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: filepath.Join(dir, "out", "scan.pdf"),
	}, filing.NamingResult{FinalFilename: "renamed.pdf"})

	require.Empty(t, report.Errors)
	assert.Equal(t, filepath.Join(dir, "out", "renamed.pdf"), report.PrimaryTargetPath)
}

func TestMove_CollisionGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "report.pdf")
	dst := filepath.Join(dir, "out", "report.pdf")
	testutil.WriteFile(t, src, "new")
	testutil.WriteFile(t, dst, "unrelated occupant")

	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	want := filepath.Join(dir, "out", "report_1.pdf")
	assert.Equal(t, want, report.PrimaryTargetPath)
	assert.Equal(t, "new", testutil.ReadFile(t, want))
	assert.Equal(t, "unrelated occupant", testutil.ReadFile(t, dst), "occupant untouched")
}

func TestMove_CollisionProbesSmallestFreeSuffix(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "report.pdf")
	dst := filepath.Join(dir, "out", "report.pdf")
	testutil.WriteFile(t, src, "new")
	testutil.WriteFile(t, dst, "a")
	testutil.WriteFile(t, filepath.Join(dir, "out", "report_1.pdf"), "b")

	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	assert.Equal(t, filepath.Join(dir, "out", "report_2.pdf"), report.PrimaryTargetPath)
}

// failingRefs fails for every path in failFor, delegating the rest.
type failingRefs struct {
	inner   referenceMaker
	failFor map[string]bool
}

func (f *failingRefs) CreateReference(linkPath, targetPath string) (string, filing.LinkKind, bool, error) {
	if f.failFor[filepath.Dir(linkPath)] {
		return linkPath, filing.LinkKindNone, false, errors.New("injected link failure")
	}
	return f.inner.CreateReference(linkPath, targetPath)
}

func (f *failingRefs) PlannedKind() filing.LinkKind {
	return f.inner.PlannedKind()
}

func TestMove_LinkFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "report.pdf")
	dst := filepath.Join(dir, "dst", "report.pdf")
	testutil.WriteFile(t, src, "content")

	goodDir := filepath.Join(dir, "tags", "good")
	badDir := filepath.Join(dir, "tags", "bad")

	r := newTestRelocator(t, Config{AllowSymlink: true})
	r.refs = &failingRefs{inner: r.refs, failFor: map[string]bool{badDir: true}}

	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
		SecondaryLinks: []filing.SecondaryLink{
			{TargetPath: filepath.Join(goodDir, "report.pdf"), Tag: "good"},
			{TargetPath: filepath.Join(badDir, "report.pdf"), Tag: "bad"},
		},
	}, filing.NamingResult{})

	assert.True(t, report.RolledBack)
	assert.False(t, report.Moved)
	assert.NotEmpty(t, report.Errors)

	// Both outcomes were still attempted and reported.
	require.Len(t, report.LinkOutcomes, 2)
	assert.True(t, report.LinkOutcomes[0].OK)
	assert.False(t, report.LinkOutcomes[1].OK)

	// Source restored; target and the successful link undone.
	assert.Equal(t, "content", testutil.ReadFile(t, src))
	assert.False(t, testutil.Exists(dst))
	assert.False(t, testutil.Exists(filepath.Join(goodDir, "report.pdf")))
}

func TestMove_DryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "report.pdf")
	dst := filepath.Join(dir, "out", "report.pdf")
	testutil.WriteFile(t, src, "x")

	r := newTestRelocator(t, Config{DryRun: true, AllowSymlink: true})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: dst,
		SecondaryLinks: []filing.SecondaryLink{
			{TargetPath: filepath.Join(dir, "tags", "a", "report.pdf"), Tag: "a"},
		},
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	assert.True(t, report.Moved, "dry-run claims logical success")
	require.Len(t, report.LinkOutcomes, 1)
	assert.True(t, report.LinkOutcomes[0].DryRun)
	assert.True(t, report.LinkOutcomes[0].OK)

	assert.True(t, testutil.Exists(src), "source untouched")
	assert.False(t, testutil.Exists(dst), "no file created")
}

func TestMove_MissingSourceIsFatal(t *testing.T) {
	dir := t.TempDir()

	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      filepath.Join(dir, "absent.pdf"),
		PrimaryTargetPath: filepath.Join(dir, "out", "absent.pdf"),
	}, filing.NamingResult{})

	assert.False(t, report.Moved)
	assert.False(t, report.RolledBack, "nothing was attempted, nothing to undo")
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "source file missing")
	assert.False(t, report.CompletedAt.IsZero())
}

func TestMove_SourceMustBeRegularFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "subdir")
	require.NoError(t, os.MkdirAll(src, 0o755))

	r := newTestRelocator(t, Config{})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: filepath.Join(dir, "out", "subdir"),
	}, filing.NamingResult{})

	assert.False(t, report.Moved)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "not a regular file")
}

func TestMove_CleanupEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "inbox")
	deep := filepath.Join(keep, "2024", "03")
	src := filepath.Join(deep, "report.pdf")
	testutil.WriteFile(t, src, "x")
	testutil.WriteFile(t, filepath.Join(keep, "other.txt"), "y")

	r := newTestRelocator(t, Config{CleanupEmptyDirs: true})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: filepath.Join(dir, "out", "report.pdf"),
	}, filing.NamingResult{})

	require.Empty(t, report.Errors)
	assert.False(t, testutil.Exists(deep), "emptied directory removed")
	assert.False(t, testutil.Exists(filepath.Join(keep, "2024")))
	assert.True(t, testutil.Exists(keep), "stops at first non-empty ancestor")
}

func TestMove_LinkSharesPrimaryBasename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "scan.pdf")
	testutil.WriteFile(t, src, "x")

	tagDir := filepath.Join(dir, "tags", "travel")
	r := newTestRelocator(t, Config{AllowSymlink: true})
	report := r.Move(filing.RelocationPlan{
		OriginalPath:      src,
		PrimaryTargetPath: filepath.Join(dir, "out", "scan.pdf"),
		SecondaryLinks: []filing.SecondaryLink{
			// Plan named the link differently; it must follow the renamed primary.
			{TargetPath: filepath.Join(tagDir, "scan.pdf"), Tag: "travel"},
		},
	}, filing.NamingResult{FinalFilename: "Trip Receipt.pdf"})

	require.Empty(t, report.Errors)
	require.Len(t, report.LinkOutcomes, 1)
	assert.Equal(t, filepath.Join(tagDir, "Trip Receipt.pdf"), report.LinkOutcomes[0].Path)
}
