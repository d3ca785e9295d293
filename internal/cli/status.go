package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status <file-path>",
		Short:         "Show the classification status of a file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			fs, err := d.coordinator.GetFileStatus(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to query file status", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if fs == nil {
				if err := formatter.Failure(fmt.Sprintf("no status recorded for %s", args[0])); err != nil {
					return err
				}
				return NewExitError(ExitFailure, "file not found in status table")
			}
			return formatter.SuccessText(renderFileStatus(*fs), fs)
		},
	}

	return cmd
}
