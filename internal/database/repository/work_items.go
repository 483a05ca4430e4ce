package repository

import (
	"context"
	"database/sql"
)

// WorkItemRepo handles cached work items.
type WorkItemRepo struct {
	db *sql.DB
}

func NewWorkItemRepo(db *sql.DB) *WorkItemRepo { return &WorkItemRepo{db: db} }

// List returns a project's work items in sync order. Board columns keep this order.
func (r *WorkItemRepo) List(ctx context.Context, projectID string) ([]WorkItem, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, project_id, name, identifier, priority, state_id, state, module, module_id, sequence_id, updated_at
	FROM work_items WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorkItem
	for rows.Next() {
		it, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *WorkItemRepo) Count(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_items WHERE project_id = ?`, projectID).Scan(&n)
	return n, err
}

func replaceWorkItems(ctx context.Context, tx *sql.Tx, projectID string, items []WorkItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_items WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for i, it := range items {
		updated := it.UpdatedAt
		if updated.IsZero() {
			updated = nowUTC()
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO work_items(id, project_id, name, identifier, priority, state_id, state, module, module_id, sequence_id, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET project_id=excluded.project_id, name=excluded.name, identifier=excluded.identifier,
		 priority=excluded.priority, state_id=excluded.state_id, state=excluded.state, module=excluded.module,
		 module_id=excluded.module_id, sequence_id=excluded.sequence_id, position=excluded.position, updated_at=excluded.updated_at;
		`, it.ID, projectID, it.Name, nonEmpty(it.Identifier), nonEmpty(it.Priority), nonEmpty(it.StateID), nonEmpty(it.State),
			nonEmpty(it.Module), nonEmpty(it.ModuleID), it.SequenceID, i, updated); err != nil {
			return err
		}
	}
	return nil
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkItem(row scanner) (WorkItem, error) {
	var it WorkItem
	var identifier, priority, stateID, state, module, moduleID sql.NullString
	if err := row.Scan(&it.ID, &it.ProjectID, &it.Name, &identifier, &priority, &stateID, &state,
		&module, &moduleID, &it.SequenceID, &it.UpdatedAt); err != nil {
		return WorkItem{}, err
	}
	it.Identifier = nullable(identifier)
	it.Priority = nullable(priority)
	it.StateID = nullable(stateID)
	it.State = nullable(state)
	it.Module = nullable(module)
	it.ModuleID = nullable(moduleID)
	return it, nil
}
