package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arcodify/obsidian-plane-plugin/internal/config"
	"github.com/Arcodify/obsidian-plane-plugin/internal/secrets"
)

func newTokenCmd() *cobra.Command {
	var workspace string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Plane API token",
	}
	cmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace slug (default: plane.workspace)")

	set := &cobra.Command{
		Use:   "set [token]",
		Short: "Store a token; reads stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, ts, err := tokenTarget(workspace)
			if err != nil {
				return err
			}
			var tok string
			if len(args) == 1 {
				tok = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				tok = line
			}
			if err := ts.Put(ws, strings.TrimSpace(tok)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored for %s\n", ws)
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, ts, err := tokenTarget(workspace)
			if err != nil {
				return err
			}
			if err := ts.Delete(ws); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token removed for %s\n", ws)
			return nil
		},
	}
	cmd.AddCommand(set, del)
	return cmd
}

func tokenTarget(workspace string) (string, *secrets.Store, error) {
	if workspace == "" {
		cfg, err := config.Load()
		if err != nil {
			return "", nil, err
		}
		workspace = cfg.Plane.Workspace
	}
	if workspace == "" {
		return "", nil, errors.New("no workspace: pass --workspace or set plane.workspace")
	}
	ts, err := secrets.Default()
	if err != nil {
		return "", nil, err
	}
	return workspace, ts, nil
}
