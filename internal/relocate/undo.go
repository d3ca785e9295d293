package relocate

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// undoOp identifies one reversible filesystem mutation.
type undoOp string

const (
	opMove  undoOp = "move"
	opLink  undoOp = "link"
	opRmdir undoOp = "rmdir"
)

// undoEntry records a single mutation so it can be reversed.
// For opMove both paths are set; opLink and opRmdir only use To.
type undoEntry struct {
	Op   undoOp
	From string
	To   string
}

// undoLog is the ordered record of mutations for one Move call.
type undoLog struct {
	entries []undoEntry
}

func (l *undoLog) record(op undoOp, from, to string) {
	l.entries = append(l.entries, undoEntry{Op: op, From: from, To: to})
}

func (l *undoLog) empty() bool {
	return len(l.entries) == 0
}

// rollback replays the log in reverse order: moves go back to their source,
// links are deleted, removed directories are not recreated (the loss there
// is limited to an empty directory). Individual failures are collected and
// returned; nothing is retried.
func (l *undoLog) rollback(logger *zap.Logger) []string {
	var failures []string

	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		switch e.Op {
		case opMove:
			if _, err := os.Lstat(e.To); err != nil {
				continue
			}
			if err := moveFile(e.To, e.From); err != nil {
				failures = append(failures, fmt.Sprintf("rollback move %s: %v", e.To, err))
				logger.Error("rollback: move back failed",
					zap.String("from", e.To), zap.String("to", e.From), zap.Error(err))
				continue
			}
			logger.Info("rollback: moved back",
				zap.String("from", e.To), zap.String("to", e.From))
		case opLink:
			if _, err := os.Lstat(e.To); err != nil {
				continue
			}
			if err := os.Remove(e.To); err != nil {
				failures = append(failures, fmt.Sprintf("rollback link %s: %v", e.To, err))
				logger.Warn("rollback: link removal failed",
					zap.String("path", e.To), zap.Error(err))
				continue
			}
			logger.Info("rollback: removed link", zap.String("path", e.To))
		case opRmdir:
			// Removed directories stay removed.
		}
	}

	return failures
}
