package demo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

func TestSeedWritesBoardableProject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "demo.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := Repos{Projects: repository.NewProjectRepo(db), Snapshots: repository.NewSnapshotRepo(db)}
	id, err := Seed(ctx, repos, 42)
	require.NoError(t, err)

	p, err := repos.Projects.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "DEMO", p.Identifier)

	data, err := repos.Snapshots.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, data.States, 5)
	require.Len(t, data.Modules, 3)
	require.Len(t, data.WorkItems, 12)

	cols := board.Project(data.WorkItems, data.States, board.Filter{})
	var total int
	var unspecified bool
	for _, c := range cols {
		total += len(c.Items)
		if c.StateKey == board.UnspecifiedKey {
			unspecified = true
		}
	}
	require.Equal(t, 12, total)
	require.True(t, unspecified)
}
