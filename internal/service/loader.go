package service

import (
	"context"

	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

// Loader makes sure a project's snapshot is in the store.
type Loader struct {
	Store     *store.Store
	Snapshots Snapshots
	// Syncer, when set, is used for projects that were never synced.
	Syncer interface {
		Sync(ctx context.Context, force bool, projectID string) error
	}
}

// EnsureLoaded loads projectID from the cache unless it is already in memory. A project
// with no cached sync is synced first when a Syncer is configured. Calling it again for a
// loaded project does nothing.
func (l *Loader) EnsureLoaded(ctx context.Context, projectID string) error {
	if projectID == "" || l.Store.IsLoaded(projectID) {
		return nil
	}
	if l.Syncer != nil {
		last, err := l.Snapshots.LastSync(ctx, projectID)
		if err != nil {
			return err
		}
		if last == nil {
			return l.Syncer.Sync(ctx, false, projectID)
		}
	}
	return l.Store.Load(ctx, projectID)
}
