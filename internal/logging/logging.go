// Package logging builds the process logger. The terminal UI owns stdout, so logs go to
// a JSON file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Arcodify/obsidian-plane-plugin/internal/config"
)

// New returns a JSON logger writing to cfg.Path at cfg.Level. The returned closer
// closes the log file. An empty path logs to stderr.
func New(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	level := log.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		lvl, err := log.ParseLevel(s)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = lvl
	}
	logger.SetLevel(level)

	if cfg.Path == "" {
		logger.SetOutput(os.Stderr)
		return logger, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}
