package repository

import (
	"context"
	"database/sql"
)

// ModuleRepo handles modules.
type ModuleRepo struct {
	db *sql.DB
}

func NewModuleRepo(db *sql.DB) *ModuleRepo { return &ModuleRepo{db: db} }

func (r *ModuleRepo) List(ctx context.Context, projectID string) ([]Module, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, project_id, name FROM modules WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func replaceModules(ctx context.Context, tx *sql.Tx, projectID string, modules []Module) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for i, m := range modules {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO modules(id, project_id, name, position) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET project_id=excluded.project_id, name=excluded.name, position=excluded.position;
		`, m.ID, projectID, m.Name, i); err != nil {
			return err
		}
	}
	return nil
}
