package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

// ProjectService keeps the cached project list in step with the workspace.
type ProjectService struct {
	Plane     PlaneAPI
	Projects  *repository.ProjectRepo
	Store     *store.Store
	Workspace string
	Log       log.FieldLogger
}

// RefreshProjects fetches the workspace's projects into the cache and reloads the store.
// When Plane cannot be reached the store is still loaded from the cache, and the fetch
// error is returned so callers can report it.
func (s *ProjectService) RefreshProjects(ctx context.Context) error {
	remote, err := s.Plane.Projects(ctx)
	if err != nil {
		if reloadErr := s.Store.ReloadProjects(ctx); reloadErr != nil {
			return fmt.Errorf("refresh projects: %w (cache: %v)", err, reloadErr)
		}
		return fmt.Errorf("refresh projects: %w", err)
	}

	rows := make([]repository.Project, 0, len(remote))
	for _, p := range remote {
		rows = append(rows, repository.Project{
			ID:         p.ID,
			Workspace:  s.Workspace,
			Name:       p.Name,
			Identifier: p.Identifier,
		})
	}
	if err := s.Projects.ReplaceWorkspace(ctx, s.Workspace, rows); err != nil {
		return fmt.Errorf("cache projects: %w", err)
	}
	if s.Log != nil {
		s.Log.WithField("projects", len(rows)).Debug("project list refreshed")
	}
	return s.Store.ReloadProjects(ctx)
}
