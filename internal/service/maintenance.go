package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database"
)

// MaintenanceService houses destructive cache actions.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes the local cache. It keeps the schema intact so the app can continue running
// and the next sync repopulates it.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"sync_runs",
			"work_items",
			"modules",
			"states",
			"projects",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
