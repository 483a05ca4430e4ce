package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Arcodify/obsidian-plane-plugin/internal/config"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
	"github.com/Arcodify/obsidian-plane-plugin/internal/logging"
	"github.com/Arcodify/obsidian-plane-plugin/internal/plane"
	"github.com/Arcodify/obsidian-plane-plugin/internal/prefs"
	"github.com/Arcodify/obsidian-plane-plugin/internal/secrets"
	"github.com/Arcodify/obsidian-plane-plugin/internal/service"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

// env is everything a command needs, built from config.
type env struct {
	cfg    config.Config
	log    *log.Logger
	db     *sql.DB
	store  *store.Store
	prefs  *prefs.File
	closer []io.Closer

	projects  *repository.ProjectRepo
	snapshots *repository.SnapshotRepo

	sync     *service.SyncService
	loader   *service.Loader
	projSvc  *service.ProjectService
	notes    *service.NoteService
	items    *service.WorkItemService
	maintain *service.MaintenanceService
}

func (e *env) Close() {
	for i := len(e.closer) - 1; i >= 0; i-- {
		_ = e.closer[i].Close()
	}
}

// setup loads config, opens the cache and wires the services. needPlane makes a
// missing workspace or API key an error.
func setup(ctx context.Context, needPlane bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logger, closer: []io.Closer{logCloser}}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		e.Close()
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		e.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	e.db = db
	e.closer = append(e.closer, db)

	e.projects = repository.NewProjectRepo(db)
	e.snapshots = repository.NewSnapshotRepo(db)
	e.store = store.New(e.snapshots, logger)

	if e.prefs, err = prefs.DefaultFile(); err != nil {
		e.Close()
		return nil, fmt.Errorf("settings: %w", err)
	}
	if s, err := e.prefs.Load(); err != nil {
		logger.WithError(err).Warn("settings unreadable; starting without a selected project")
	} else if s.SelectedProjectID != "" {
		e.store.SetSelectedProjectID(s.SelectedProjectID)
	}
	if err := e.store.ReloadProjects(ctx); err != nil {
		e.Close()
		return nil, err
	}

	apiKey := resolveAPIKey(cfg.Plane, logger)
	if needPlane {
		switch {
		case cfg.Plane.Workspace == "":
			e.Close()
			return nil, errors.New("plane.workspace is not configured")
		case apiKey == "":
			e.Close()
			return nil, fmt.Errorf("no Plane API key: set $%s or run `planeboard token set`", cfg.Plane.APIKeyEnv)
		}
	}
	client := plane.NewClient(cfg.Plane.BaseURL, cfg.Plane.Workspace, apiKey, cfg.Plane.Timeout)
	if cfg.Plane.PageSize > 0 {
		client.PageSize = cfg.Plane.PageSize
	}

	e.sync = &service.SyncService{
		Plane:             client,
		Snapshots:         e.snapshots,
		Store:             e.store,
		Log:               logger,
		MinInterval:       cfg.Sync.MinInterval,
		ModuleConcurrency: cfg.Plane.ModuleConcurrency,
	}
	e.loader = &service.Loader{Store: e.store, Snapshots: e.snapshots, Syncer: e.sync}
	e.projSvc = &service.ProjectService{
		Plane:     client,
		Projects:  e.projects,
		Store:     e.store,
		Workspace: cfg.Plane.Workspace,
		Log:       logger,
	}
	e.notes = &service.NoteService{
		Fs:  afero.NewOsFs(),
		Dir: cfg.Notes.Dir,
		Modules: func(projectID string) []repository.Module {
			return e.store.ProjectData(projectID).Modules
		},
	}
	e.items = &service.WorkItemService{Plane: client, Syncer: e.sync}
	e.maintain = &service.MaintenanceService{DB: db}
	return e, nil
}

// resolveAPIKey prefers the configured env var, then the token store, then the plain
// config value.
func resolveAPIKey(cfg config.PlaneConfig, logger log.FieldLogger) string {
	if cfg.APIKeyEnv != "" {
		if v := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv)); v != "" {
			return v
		}
	}
	if cfg.Workspace != "" {
		if ts, err := secrets.Default(); err == nil {
			tok, err := ts.Get(cfg.Workspace)
			switch {
			case err == nil:
				return tok
			case !errors.Is(err, secrets.ErrNotFound):
				logger.WithError(err).Warn("token store unreadable")
			}
		}
	}
	return strings.TrimSpace(cfg.APIKey)
}
