package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var opts boardOptions
	root := &cobra.Command{
		Use:   "planeboard",
		Short: "Kanban board over a Plane workspace",
		Long: `planeboard syncs work items from a Plane workspace into a local cache and shows
them as a kanban board in the terminal, one column per workflow state.

Configuration lives in $HOME/.config/planeboard/config.toml (or $PLANEBOARD_CONFIG);
every key can be overridden with a PLANEBOARD_ environment variable.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd, opts)
		},
	}
	root.Flags().StringVarP(&opts.project, "project", "p", "", "project id to open (default: last selected)")
	root.Flags().StringVarP(&opts.module, "module", "m", "", "module id or name to filter by")

	root.AddCommand(newSyncCmd(), newServeCmd(), newTokenCmd(), newSeedCmd(), newResetCmd())
	return root
}
