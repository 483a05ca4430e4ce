package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var (
		project string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync a project from Plane into the local cache",
		Long: `Sync fetches states, modules and work items of one project and replaces the
cached copy. Without --project the last selected project is synced.

Running it from cron keeps open boards current: they watch the cache file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.projSvc.RefreshProjects(ctx); err != nil {
				e.log.WithError(err).Warn("project list refresh failed")
			}
			id := firstNonEmpty(project, e.store.SelectedProjectID(), e.cfg.Plane.DefaultProjectID)
			res, err := e.sync.Run(ctx, force, id)
			if err != nil {
				return err
			}
			label := e.store.ProjectLabel(res.ProjectID)
			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: synced recently, skipped (use --force)\n", label)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d work items\n", label, res.Items)
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project id (default: last selected)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "sync even if the project synced recently")
	return cmd
}
