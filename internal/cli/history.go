package cli

import (
	"github.com/spf13/cobra"

	"github.com/sortd/sortd/internal/commit"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Path     string
	Category string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List audit ledger entries, newest first",
		Long: `Query the append-only audit ledger. Filters narrow by original file path
or category; results are newest first.

Example:
  sortd history --limit 20
  sortd history --path /inbox/report.pdf
  sortd history --category finance --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			records, err := d.coordinator.GetAuditRecords(cmd.Context(), commit.AuditFilter{
				FilePath: opts.Path,
				Category: opts.Category,
			}, opts.Limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to query audit records", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.SuccessText(renderAuditRecords(records), records)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "filter by original file path")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "maximum rows to return")

	return cmd
}
