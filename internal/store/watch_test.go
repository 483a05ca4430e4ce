package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnCacheWrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "planeboard.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o600))

	reloaded := make(chan struct{}, 4)
	logger, _ := test.NewNullLogger()
	w, err := Watch(dbPath, 20*time.Millisecond, func(context.Context) error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	}, logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("y"), 0o600))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("z"), 0o600))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("expected reload after cache write")
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
