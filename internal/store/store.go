// Package store holds the cached Plane data the boards render from: the project list,
// per-project snapshots and the process-wide selected project. Every change is fanned
// out to subscribers.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

// Source reads cached board data.
type Source interface {
	Projects(ctx context.Context) ([]repository.Project, error)
	Load(ctx context.Context, projectID string) (repository.ProjectData, error)
}

// Store is the shared work-item store. It is safe for concurrent use.
type Store struct {
	src Source
	bus bus

	// reload serializes cache reads with the writes that follow them, so a slow
	// Refresh cannot overwrite a newer Load.
	reload sync.Mutex

	mu       sync.RWMutex
	selected string
	projects []repository.Project
	data     map[string]repository.ProjectData
}

// New returns a store reading from src.
func New(src Source, logger log.FieldLogger) *Store {
	return &Store{
		src:  src,
		bus:  bus{log: logger},
		data: make(map[string]repository.ProjectData),
	}
}

// Subscribe registers h for data-changed notifications.
func (s *Store) Subscribe(h Handler) Token { return s.bus.subscribe(h) }

// Unsubscribe removes a subscription. It reports whether tok was registered.
func (s *Store) Unsubscribe(tok Token) bool { return s.bus.unsubscribe(tok) }

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int { return s.bus.count() }

// SelectedProjectID returns the selected project, or "" when none is selected.
func (s *Store) SelectedProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelectedProjectID selects a project for every view. The last writer wins and all
// subscribers are notified.
func (s *Store) SetSelectedProjectID(id string) {
	s.mu.Lock()
	changed := s.selected != id
	s.selected = id
	s.mu.Unlock()
	if changed {
		s.bus.publish()
	}
}

// Projects returns the cached project list.
func (s *Store) Projects() []repository.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

// Project returns a cached project by id.
func (s *Store) Project(id string) (repository.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return repository.Project{}, false
}

// ProjectLabel returns a display label for a project: its name with the identifier, the
// raw id when unknown, or "" for no project.
func (s *Store) ProjectLabel(id string) string {
	if id == "" {
		return ""
	}
	p, ok := s.Project(id)
	if !ok {
		return id
	}
	if p.Identifier != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.Identifier)
	}
	return p.Name
}

// ProjectData returns the loaded snapshot of a project, or an empty snapshot.
func (s *Store) ProjectData(id string) repository.ProjectData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[id]
}

// SelectedData returns the snapshot of the selected project, or an empty one.
func (s *Store) SelectedData() repository.ProjectData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[s.selected]
}

// IsLoaded reports whether a snapshot of the project is held in memory.
func (s *Store) IsLoaded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok
}

// ReloadProjects re-reads the project list from the cache and notifies.
func (s *Store) ReloadProjects(ctx context.Context) error {
	s.reload.Lock()
	projects, err := s.src.Projects(ctx)
	if err != nil {
		s.reload.Unlock()
		return fmt.Errorf("reload projects: %w", err)
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	s.reload.Unlock()
	s.bus.publish()
	return nil
}

// Load replaces the in-memory snapshot of a project from the cache and notifies.
func (s *Store) Load(ctx context.Context, projectID string) error {
	s.reload.Lock()
	data, err := s.src.Load(ctx, projectID)
	if err != nil {
		s.reload.Unlock()
		return fmt.Errorf("load project %s: %w", projectID, err)
	}
	s.mu.Lock()
	s.data[projectID] = data
	s.mu.Unlock()
	s.reload.Unlock()
	s.bus.publish()
	return nil
}

// Refresh reloads the project list and every loaded snapshot, notifying once.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.bus.publish()
	return nil
}

func (s *Store) refresh(ctx context.Context) error {
	s.reload.Lock()
	defer s.reload.Unlock()

	projects, err := s.src.Projects(ctx)
	if err != nil {
		return fmt.Errorf("refresh projects: %w", err)
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	fresh := make(map[string]repository.ProjectData, len(ids))
	for _, id := range ids {
		data, err := s.src.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("refresh project %s: %w", id, err)
		}
		fresh[id] = data
	}

	s.mu.Lock()
	s.projects = projects
	for id, data := range fresh {
		s.data[id] = data
	}
	s.mu.Unlock()
	return nil
}
