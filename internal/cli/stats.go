package cli

import (
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show aggregate filing statistics",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			stats, err := d.coordinator.GetStatistics(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to query statistics", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.SuccessText(renderStatistics(stats), stats)
		},
	}

	return cmd
}
