package relocate

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/filing"
	"github.com/sortd/sortd/internal/testutil"
)

func TestLinker_SymlinkReplacesStaleEntry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "target.pdf")
	linkPath := filepath.Join(dir, "link.pdf")
	testutil.WriteFile(t, target, "x")

	// Dangling symlink occupies the link path.
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.pdf"), linkPath))

	l := newLinker(Config{AllowSymlink: true}, zap.NewNop())
	created, kind, ok, err := l.CreateReference(linkPath, target)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filing.LinkKindSymlink, kind)
	assert.Equal(t, linkPath, created)

	resolved, err := os.Readlink(linkPath)
	require.NoError(t, err)
	assert.Equal(t, target, resolved)
}

func TestLinker_NoStrategyEnabled(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.pdf")
	testutil.WriteFile(t, target, "x")

	l := newLinker(Config{}, zap.NewNop())
	_, kind, ok, err := l.CreateReference(filepath.Join(dir, "link.pdf"), target)
	assert.False(t, ok)
	assert.Equal(t, filing.LinkKindNone, kind)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no link strategy enabled")
}

func TestLinker_PlannedKind(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("strategy chain differs on windows")
	}

	assert.Equal(t, filing.LinkKindSymlink,
		newLinker(Config{AllowSymlink: true}, zap.NewNop()).PlannedKind())
	assert.Equal(t, filing.LinkKindNone,
		newLinker(Config{}, zap.NewNop()).PlannedKind())
}

func TestMoveFile_CopyFallbackPreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "dst.pdf")
	testutil.WriteFile(t, src, "payload bytes")

	require.NoError(t, moveFile(src, dst))
	assert.False(t, testutil.Exists(src))
	assert.Equal(t, "payload bytes", testutil.ReadFile(t, dst))
}

func TestRemoveStale_MissingPathIsNoop(t *testing.T) {
	assert.NoError(t, removeStale(filepath.Join(t.TempDir(), "absent")))
}
