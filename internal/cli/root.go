package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sortd/sortd/internal/commit"
	"github.com/sortd/sortd/internal/config"
	"github.com/sortd/sortd/internal/semindex"
	"github.com/sortd/sortd/internal/store"
	"github.com/sortd/sortd/internal/vector"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to config file; empty means defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sortd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sortd",
		Short: "sortd - automatic document filing",
		Long:  "Files classified documents into a target tree and records each decision\nacross the audit ledger, status table, similarity store and semantic index.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to config file")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewReviewCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewRollbackCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the zap logger used by every command. Logs go to stderr
// so JSON output on stdout stays machine-parseable.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// deps bundles the stores a command opened so they can be closed together.
type deps struct {
	cfg         config.Config
	coordinator *commit.Coordinator
	store       *store.Store
	index       *semindex.Index
	logger      *zap.Logger
}

func (d *deps) Close() {
	if d.index != nil {
		if err := d.index.Close(); err != nil {
			d.logger.Error("error closing semantic index", zap.Error(err))
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Error("error closing database", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

// openDeps loads config and opens the repository plus whichever
// collaborators the config enables.
func openDeps(opts *RootOptions) (*deps, error) {
	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database.Path, store.Options{
		AuditTable:  cfg.Database.AuditTable,
		StatusTable: cfg.Database.StatusTable,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	d := &deps{cfg: cfg, store: st, logger: logger}

	var vectors commit.SimilarityStore
	if cfg.VectorStore.Address != "" {
		vectors = vector.NewClient(cfg.VectorStore.Address, cfg.VectorStore.Collection, logger)
	}

	var index commit.SemanticIndex
	if cfg.SemanticIndex.Enabled {
		ix, err := semindex.Open(cfg.SemanticIndex.Path, logger)
		if err != nil {
			// The semantic index is one of four independent stores; failing
			// to open it degrades that one outcome, not the whole command.
			logger.Warn("semantic index unavailable", zap.Error(err))
		} else {
			d.index = ix
			index = ix
		}
	}

	d.coordinator = commit.New(st, vectors, index, commit.Config{
		SemanticIndexEnabled: cfg.SemanticIndex.Enabled && index != nil,
		ReviewThreshold:      cfg.Classification.ReviewThreshold,
	}, logger)

	return d, nil
}
