package cli

import (
	"github.com/spf13/cobra"
)

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "List files flagged for manual review",
		Long: `List every file whose classification confidence fell below the review
threshold at commit time, most recently updated first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			statuses, err := d.coordinator.GetFilesNeedingReview(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to query files needing review", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.SuccessText(renderFileStatuses(statuses), statuses)
		},
	}

	return cmd
}
