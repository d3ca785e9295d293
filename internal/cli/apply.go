package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sortd/sortd/internal/commit"
	"github.com/sortd/sortd/internal/filing"
	"github.com/sortd/sortd/internal/relocate"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	DryRun bool
}

// commitRequest is the YAML input for one document commit: the collaborator
// outputs the core consumes, bundled in one file.
type commitRequest struct {
	Plan           filing.RelocationPlan       `yaml:"plan" validate:"required"`
	Naming         filing.NamingResult         `yaml:"naming"`
	Payload        filing.DocumentPayload      `yaml:"payload"`
	Classification filing.ClassificationResult `yaml:"classification" validate:"required"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <request.yaml>",
		Short: "Relocate one document and record the commit",
		Long: `Run the commit stage for one document: move the file to its planned
target (with secondary links for additional tags), then record the decision
in the similarity store, semantic index, audit ledger and status table.

The request file bundles the collaborator outputs (relocation plan, naming
result, document payload, classification result) as YAML.

Example:
  sortd apply request.yaml
  sortd apply --dry-run request.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "log intended operations without touching the filesystem")

	return cmd
}

func runApply(opts *ApplyOptions, requestPath string, cmd *cobra.Command) error {
	req, err := loadCommitRequest(requestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load commit request", err)
	}

	d, err := openDeps(opts.RootOptions)
	if err != nil {
		return err
	}
	defer d.Close()

	// One operation ID per document commit, threaded through the relocation
	// logs and the store writes so the audit row matches the log lines.
	operationID := commit.NewOperationID()
	logger := d.logger.With(zap.String("operation_id", operationID))

	relocator := relocate.New(relocate.Config{
		DryRun:                  opts.DryRun || d.cfg.System.DryRun,
		CleanupEmptyDirs:        d.cfg.File.CleanupEmptyDirs,
		AllowSymlink:            d.cfg.File.AllowSymlink,
		AllowShortcut:           d.cfg.File.AllowShortcut,
		PreferHardlinkOnWindows: d.cfg.File.PreferHardlinkOnWindows,
	}, logger)

	started := time.Now()
	relocation := relocator.Move(req.Plan, req.Naming)

	report := d.coordinator.Commit(cmd.Context(), commit.Request{
		OperationID:    operationID,
		Report:         relocation,
		Payload:        req.Payload,
		Classification: req.Classification,
		Elapsed:        time.Since(started),
	})

	result := struct {
		Relocation filing.RelocationReport `json:"relocation"`
		Commit     filing.CommitReport     `json:"commit"`
	}{relocation, report}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := formatter.SuccessText(renderCommitResult(relocation, report), result); err != nil {
		return err
	}

	if len(relocation.Errors) > 0 || !report.Success {
		return NewExitError(ExitFailure, "commit completed with failures")
	}
	return nil
}

func loadCommitRequest(path string) (commitRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return commitRequest{}, fmt.Errorf("read request: %w", err)
	}

	var req commitRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return commitRequest{}, fmt.Errorf("parse request: %w", err)
	}
	if err := validator.New().Struct(req); err != nil {
		return commitRequest{}, fmt.Errorf("validate request: %w", err)
	}
	return req, nil
}
