package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sortd/sortd/internal/filing"
)

// NewRollbackCommand creates the rollback command.
func NewRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback <operation-id>",
		Short: "Look up an operation for manual rollback",
		Long: `Look up the audit record for an operation ID. This reports what the
operation did so it can be reversed by hand; it does not undo the file move
or any store write itself.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			result, err := d.coordinator.RollbackOperation(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to look up operation", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if !result.Found {
				if err := formatter.Failure(fmt.Sprintf("operation %s not found", args[0])); err != nil {
					return err
				}
				return NewExitError(ExitFailure, "operation not found")
			}

			text := fmt.Sprintf("%s\n%s", result.Message, renderAuditRecords([]filing.AuditRecord{*result.Record}))
			return formatter.SuccessText(text, result)
		},
	}

	return cmd
}
