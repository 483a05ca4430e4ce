package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
	"github.com/Arcodify/obsidian-plane-plugin/internal/plane"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

// ErrNoProject is returned when a sync has no project to act on.
var ErrNoProject = errors.New("no project selected")

// PlaneAPI is the subset of the Plane client the services use.
type PlaneAPI interface {
	Projects(ctx context.Context) ([]plane.Project, error)
	States(ctx context.Context, projectID string) ([]plane.State, error)
	Modules(ctx context.Context, projectID string) ([]plane.Module, error)
	WorkItems(ctx context.Context, projectID string) ([]plane.WorkItem, error)
	ModuleItems(ctx context.Context, projectID, moduleID string) ([]plane.ModuleItem, error)
	CreateWorkItem(ctx context.Context, projectID string, in plane.CreateWorkItem) (plane.WorkItem, error)
}

// Snapshots persists synced project data.
type Snapshots interface {
	Replace(ctx context.Context, projectID string, data repository.ProjectData, syncedAt time.Time) error
	LastSync(ctx context.Context, projectID string) (*repository.SyncRun, error)
}

// SyncService pulls a project from Plane into the local cache and reloads the store.
type SyncService struct {
	Plane     PlaneAPI
	Snapshots Snapshots
	Store     *store.Store
	Log       log.FieldLogger

	// MinInterval skips non-forced syncs of a project synced more recently than this.
	MinInterval time.Duration
	// ModuleConcurrency bounds parallel module-issue listings.
	ModuleConcurrency int
	Now               func() time.Time

	group singleflight.Group
}

// SyncResult describes one completed sync.
type SyncResult struct {
	ProjectID string
	Items     int
	Skipped   bool
}

// Sync syncs projectID, or the selected project when projectID is empty.
func (s *SyncService) Sync(ctx context.Context, force bool, projectID string) error {
	_, err := s.Run(ctx, force, projectID)
	return err
}

// Run is Sync with a result. Concurrent runs for one project share a single fetch.
func (s *SyncService) Run(ctx context.Context, force bool, projectID string) (SyncResult, error) {
	if projectID == "" && s.Store != nil {
		projectID = s.Store.SelectedProjectID()
	}
	if projectID == "" {
		return SyncResult{}, ErrNoProject
	}
	key := projectID
	if force {
		key += ":force"
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.run(ctx, force, projectID)
	})
	if err != nil {
		return SyncResult{}, err
	}
	return v.(SyncResult), nil
}

func (s *SyncService) run(ctx context.Context, force bool, projectID string) (SyncResult, error) {
	logger := s.logger().WithField("project", projectID)
	now := s.now()

	if !force && s.MinInterval > 0 {
		last, err := s.Snapshots.LastSync(ctx, projectID)
		if err != nil {
			return SyncResult{}, fmt.Errorf("last sync: %w", err)
		}
		if last != nil && now.Sub(last.SyncedAt) < s.MinInterval {
			logger.WithField("synced_at", last.SyncedAt).Debug("sync skipped: synced recently")
			if s.Store != nil && !s.Store.IsLoaded(projectID) {
				if err := s.Store.Load(ctx, projectID); err != nil {
					return SyncResult{}, err
				}
			}
			return SyncResult{ProjectID: projectID, Items: last.Items, Skipped: true}, nil
		}
	}

	data, err := s.fetch(ctx, projectID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync %s: %w", projectID, err)
	}
	if err := s.Snapshots.Replace(ctx, projectID, data, now); err != nil {
		return SyncResult{}, fmt.Errorf("store snapshot: %w", err)
	}
	if s.Store != nil {
		if err := s.Store.Load(ctx, projectID); err != nil {
			return SyncResult{}, err
		}
	}
	logger.WithFields(log.Fields{
		"items":   len(data.WorkItems),
		"states":  len(data.States),
		"modules": len(data.Modules),
	}).Info("project synced")
	return SyncResult{ProjectID: projectID, Items: len(data.WorkItems)}, nil
}

func (s *SyncService) fetch(ctx context.Context, projectID string) (repository.ProjectData, error) {
	var (
		states  []plane.State
		modules []plane.Module
		items   []plane.WorkItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		states, err = s.Plane.States(gctx, projectID)
		if err != nil {
			err = fmt.Errorf("states: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		modules, err = s.Plane.Modules(gctx, projectID)
		if err != nil {
			err = fmt.Errorf("modules: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		items, err = s.Plane.WorkItems(gctx, projectID)
		if err != nil {
			err = fmt.Errorf("work items: %w", err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return repository.ProjectData{}, err
	}

	membership, err := s.moduleMembership(ctx, projectID, modules, items)
	if err != nil {
		return repository.ProjectData{}, err
	}

	prefix := ""
	if s.Store != nil {
		if p, ok := s.Store.Project(projectID); ok {
			prefix = p.Identifier
		}
	}

	data := repository.ProjectData{
		States:    make([]repository.State, 0, len(states)),
		Modules:   make([]repository.Module, 0, len(modules)),
		WorkItems: make([]repository.WorkItem, 0, len(items)),
	}
	for _, st := range states {
		data.States = append(data.States, repository.State{
			ID:        st.ID,
			ProjectID: projectID,
			Name:      st.Name,
			Color:     optional(st.Color),
			Group:     st.Group,
			Sequence:  st.Sequence,
		})
	}
	for _, m := range modules {
		data.Modules = append(data.Modules, repository.Module{ID: m.ID, ProjectID: projectID, Name: m.Name})
	}
	for _, it := range items {
		wi := repository.WorkItem{
			ID:         it.ID,
			ProjectID:  projectID,
			Name:       it.Name,
			Priority:   optional(it.Priority),
			StateID:    it.StateID,
			State:      it.State,
			Module:     it.Module,
			ModuleID:   it.ModuleID,
			SequenceID: it.SequenceID,
			UpdatedAt:  it.UpdatedAt,
		}
		if prefix != "" && it.SequenceID > 0 {
			ident := prefix + "-" + strconv.Itoa(it.SequenceID)
			wi.Identifier = &ident
		}
		if mod, ok := membership[it.ID]; ok {
			wi.Module = &mod
		}
		data.WorkItems = append(data.WorkItems, wi)
	}
	return data, nil
}

// moduleMembership fills in modules for items that carry no module reference of their
// own, using the per-module issue listings.
func (s *SyncService) moduleMembership(ctx context.Context, projectID string, modules []plane.Module, items []plane.WorkItem) (map[string]string, error) {
	missing := make(map[string]bool)
	for _, it := range items {
		if _, ok := board.ResolveModuleID(toBoardItem(it)); !ok {
			missing[it.ID] = true
		}
	}
	if len(missing) == 0 || len(modules) == 0 {
		return nil, nil
	}

	limit := s.ModuleConcurrency
	if limit <= 0 {
		limit = 4
	}
	links := make([][]plane.ModuleItem, len(modules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, m := range modules {
		i, m := i, m
		g.Go(func() error {
			res, err := s.Plane.ModuleItems(gctx, projectID, m.ID)
			if err != nil {
				return fmt.Errorf("module %s issues: %w", m.ID, err)
			}
			links[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for i, m := range modules {
		for _, link := range links[i] {
			if !missing[link.Issue] {
				continue
			}
			// An item in several modules keeps the first listed.
			if _, seen := out[link.Issue]; !seen {
				out[link.Issue] = m.ID
			}
		}
	}
	return out, nil
}

func toBoardItem(it plane.WorkItem) repository.WorkItem {
	return repository.WorkItem{Module: it.Module, ModuleID: it.ModuleID}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SyncService) logger() log.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return log.StandardLogger()
}
