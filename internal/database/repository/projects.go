package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ProjectRepo handles projects.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) Upsert(ctx context.Context, p Project) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO projects(id, workspace, name, identifier, updated_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 workspace=excluded.workspace,
	 name=excluded.name,
	 identifier=excluded.identifier,
	 updated_at=CURRENT_TIMESTAMP;
	`, p.ID, p.Workspace, p.Name, p.Identifier)
	return err
}

// ReplaceWorkspace swaps the cached project list of a workspace for projects.
// Cached boards of removed projects are left alone until their next sync.
func (r *ProjectRepo) ReplaceWorkspace(ctx context.Context, workspace string, projects []Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE workspace = ?`, workspace); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, p := range projects {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects(id, workspace, name, identifier, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET workspace=excluded.workspace, name=excluded.name, identifier=excluded.identifier, updated_at=CURRENT_TIMESTAMP;
		`, p.ID, workspace, p.Name, p.Identifier); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *ProjectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, workspace, name, identifier, updated_at FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Workspace, &p.Name, &p.Identifier, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, workspace, name, identifier, updated_at FROM projects WHERE id = ?`, id)
	var p Project
	if err := row.Scan(&p.ID, &p.Workspace, &p.Name, &p.Identifier, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
