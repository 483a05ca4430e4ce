package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Arcodify/obsidian-plane-plugin/internal/plane"
)

// WorkItemService creates work items in Plane and refreshes the board afterwards.
type WorkItemService struct {
	Plane  PlaneAPI
	Syncer interface {
		Sync(ctx context.Context, force bool, projectID string) error
	}
}

// Create adds a work item named name to projectID, optionally in stateID, then forces a
// sync of the project so it shows up on every open board.
func (s *WorkItemService) Create(ctx context.Context, projectID, name, stateID string) error {
	name = strings.TrimSpace(name)
	if projectID == "" {
		return ErrNoProject
	}
	if name == "" {
		return errors.New("work item name is required")
	}
	if _, err := s.Plane.CreateWorkItem(ctx, projectID, plane.CreateWorkItem{Name: name, StateID: stateID}); err != nil {
		return fmt.Errorf("create work item: %w", err)
	}
	return s.Syncer.Sync(ctx, true, projectID)
}
