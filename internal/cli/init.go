package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data stores",
		Long: `Open (creating if necessary) the audit/status database and the semantic
index, applying schema migrations. Safe to run repeatedly.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			indexed := 0
			if d.index != nil {
				if indexed, err = d.index.Count(cmd.Context()); err != nil {
					return WrapExitError(ExitCommandError, "failed to query semantic index", err)
				}
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			text := fmt.Sprintf("database ready at %s\nsemantic index ready at %s (%d documents)",
				d.cfg.Database.Path, d.cfg.SemanticIndex.Path, indexed)
			return formatter.SuccessText(text, map[string]any{
				"database":          d.cfg.Database.Path,
				"semantic_index":    d.cfg.SemanticIndex.Path,
				"indexed_documents": indexed,
			})
		},
	}

	return cmd
}
