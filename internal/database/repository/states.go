package repository

import (
	"context"
	"database/sql"
)

// StateRepo handles workflow states.
type StateRepo struct {
	db *sql.DB
}

func NewStateRepo(db *sql.DB) *StateRepo { return &StateRepo{db: db} }

// List returns a project's states in the order Plane returned them.
func (r *StateRepo) List(ctx context.Context, projectID string) ([]State, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, project_id, name, color, grp, sequence FROM states WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []State
	for rows.Next() {
		var s State
		var color sql.NullString
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &color, &s.Group, &s.Sequence); err != nil {
			return nil, err
		}
		if color.Valid {
			s.Color = &color.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func replaceStates(ctx context.Context, tx *sql.Tx, projectID string, states []State) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM states WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for i, s := range states {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO states(id, project_id, name, color, grp, sequence, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET project_id=excluded.project_id, name=excluded.name, color=excluded.color,
		 grp=excluded.grp, sequence=excluded.sequence, position=excluded.position;
		`, s.ID, projectID, s.Name, nonEmpty(s.Color), s.Group, s.Sequence, i); err != nil {
			return err
		}
	}
	return nil
}
