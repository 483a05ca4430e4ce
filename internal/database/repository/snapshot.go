package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SnapshotRepo reads and replaces a project's board inputs as one unit.
type SnapshotRepo struct {
	db       *sql.DB
	states   *StateRepo
	modules  *ModuleRepo
	items    *WorkItemRepo
	projects *ProjectRepo
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{
		db:       db,
		states:   NewStateRepo(db),
		modules:  NewModuleRepo(db),
		items:    NewWorkItemRepo(db),
		projects: NewProjectRepo(db),
	}
}

// Projects lists cached projects.
func (r *SnapshotRepo) Projects(ctx context.Context) ([]Project, error) {
	return r.projects.List(ctx)
}

// Load returns the cached snapshot of a project. A project that was never synced yields
// an empty snapshot.
func (r *SnapshotRepo) Load(ctx context.Context, projectID string) (ProjectData, error) {
	var data ProjectData
	var err error
	if data.States, err = r.states.List(ctx, projectID); err != nil {
		return ProjectData{}, fmt.Errorf("load states: %w", err)
	}
	if data.Modules, err = r.modules.List(ctx, projectID); err != nil {
		return ProjectData{}, fmt.Errorf("load modules: %w", err)
	}
	if data.WorkItems, err = r.items.List(ctx, projectID); err != nil {
		return ProjectData{}, fmt.Errorf("load work items: %w", err)
	}
	return data, nil
}

// Replace swaps a project's states, modules and work items in one transaction and
// records the sync time.
func (r *SnapshotRepo) Replace(ctx context.Context, projectID string, data ProjectData, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := replaceStates(ctx, tx, projectID, data.States); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("replace states: %w", err)
	}
	if err := replaceModules(ctx, tx, projectID, data.Modules); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("replace modules: %w", err)
	}
	if err := replaceWorkItems(ctx, tx, projectID, data.WorkItems); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("replace work items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO sync_runs(project_id, synced_at, items) VALUES (?, ?, ?)
	ON CONFLICT(project_id) DO UPDATE SET synced_at=excluded.synced_at, items=excluded.items;
	`, projectID, syncedAt.UTC(), len(data.WorkItems)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record sync: %w", err)
	}
	return tx.Commit()
}

// LastSync returns the last sync record for a project, or nil if it was never synced.
func (r *SnapshotRepo) LastSync(ctx context.Context, projectID string) (*SyncRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT project_id, synced_at, items FROM sync_runs WHERE project_id = ?`, projectID)
	var run SyncRun
	if err := row.Scan(&run.ProjectID, &run.SyncedAt, &run.Items); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
