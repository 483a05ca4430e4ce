package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arcodify/obsidian-plane-plugin/internal/demo"
	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

func newSeedCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo project into the local cache and select it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			id, err := demo.Seed(ctx, demo.Repos{Projects: e.projects, Snapshots: e.snapshots}, seed)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			if err := e.prefs.SaveSelectedProject(id); err != nil {
				return err
			}
			if err := e.store.ReloadProjects(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s (%s)\n", view.DisplayText(e.store.ProjectLabel(id)), id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	return cmd
}
