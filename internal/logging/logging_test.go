package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Arcodify/obsidian-plane-plugin/internal/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "planeboard.log")
	logger, closer, err := New(config.LogConfig{Path: path, Level: "debug"})
	require.NoError(t, err)
	require.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.WithField("project", "p1").Debug("project synced")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &entry))
	require.Equal(t, "project synced", entry["msg"])
	require.Equal(t, "p1", entry["project"])
	require.Equal(t, "debug", entry["level"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}
