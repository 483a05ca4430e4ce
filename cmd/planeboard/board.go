package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
	"github.com/Arcodify/obsidian-plane-plugin/internal/tui"
	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

type boardOptions struct {
	project string
	module  string
}

func runBoard(cmd *cobra.Command, opts boardOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	sink := tui.NewFrameSink()
	ctrl := view.New(view.Deps{
		Store:            e.store,
		Syncer:           e.sync,
		Loader:           e.loader,
		Projects:         e.projSvc,
		Notes:            e.notes,
		Creator:          e.items,
		Settings:         e.prefs,
		Renderer:         sink,
		DefaultProjectID: e.cfg.Plane.DefaultProjectID,
		Log:              e.log,
	})
	defer ctrl.Close()

	projectID := firstNonEmpty(opts.project, e.store.SelectedProjectID(), e.cfg.Plane.DefaultProjectID)
	if err := ctrl.Restore(ctx, view.RestoreState{ProjectID: projectID}); err != nil {
		e.log.WithError(err).WithField("project", projectID).Warn("restore board")
	}

	moduleID, err := resolveModule(e.store, projectID, opts.module)
	if err != nil {
		return err
	}

	if e.cfg.Sync.Watch {
		w, err := store.Watch(e.cfg.Database.Path, 250*time.Millisecond, e.store.Refresh, e.log)
		if err != nil {
			e.log.WithError(err).Warn("cache watch disabled")
		} else {
			defer w.Close()
		}
	}

	app := tui.New(ctx, ctrl, sink, tui.Options{Module: moduleID})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}

// resolveModule turns a module id or name into an id for the project.
func resolveModule(s *store.Store, projectID, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	id, suggestion, ok := board.LookupModule(s.ProjectData(projectID).Modules, query)
	if ok {
		return id, nil
	}
	if suggestion != "" {
		return "", fmt.Errorf("unknown module %q (did you mean %q?)", query, suggestion)
	}
	return "", fmt.Errorf("unknown module %q", query)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
