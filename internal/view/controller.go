// Package view drives one board panel: it owns the module filter, listens to the
// work-item store and pushes a fresh Frame to its renderer whenever something the board
// shows may have changed.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

var (
	ErrClosed         = errors.New("board view closed")
	ErrNotOpen        = errors.New("board view not open")
	ErrSyncInProgress = errors.New("sync already in progress")
)

// Phase is the controller's lifecycle position.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseDisposed:
		return "disposed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Store is the work-item store as seen by a board.
type Store interface {
	FrameSource
	Subscribe(h store.Handler) store.Token
	Unsubscribe(tok store.Token) bool
	SelectedProjectID() string
	SetSelectedProjectID(id string)
}

type Syncer interface {
	Sync(ctx context.Context, force bool, projectID string) error
}

type Loader interface {
	EnsureLoaded(ctx context.Context, projectID string) error
}

type ProjectLister interface {
	RefreshProjects(ctx context.Context) error
}

type Notes interface {
	EnsureNote(ctx context.Context, item repository.WorkItem) (string, error)
}

type Creator interface {
	Create(ctx context.Context, projectID, name, stateID string) error
}

// Settings persists the selected project.
type Settings interface {
	SaveSelectedProject(id string) error
}

// Renderer receives frames. Render is called with the controller's lock held and must
// not call back into the controller.
type Renderer interface {
	Render(Frame)
}

// RestoreState is the persisted view state handed back by the host.
type RestoreState struct {
	ProjectID string `json:"projectId,omitempty"`
}

// Deps wires a controller to its collaborators. Creator may be nil.
type Deps struct {
	Store            Store
	Syncer           Syncer
	Loader           Loader
	Projects         ProjectLister
	Notes            Notes
	Creator          Creator
	Settings         Settings
	Renderer         Renderer
	DefaultProjectID string
	Log              log.FieldLogger
}

// Controller is the board view state machine. All methods are safe for concurrent use.
// Collaborators are always called without the lock held, so store notifications they
// trigger can re-enter Invalidate.
type Controller struct {
	d   Deps
	log log.FieldLogger

	mu      sync.Mutex
	phase   Phase
	filter  board.FilterState
	token   store.Token
	syncing bool
	renders int
}

// New returns a closed controller.
func New(d Deps) *Controller {
	logger := d.Log
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{d: d, log: logger.WithField("component", "board")}
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Renders returns how many frames were pushed.
func (c *Controller) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// DisplayText returns the panel title.
func (c *Controller) DisplayText() string {
	return DisplayText(c.d.Store.ProjectLabel(c.d.Store.SelectedProjectID()))
}

// Open refreshes the project list, subscribes to the store and renders the first frame.
// A failed refresh is logged and the board opens on cached projects.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	switch c.phase {
	case PhaseDisposed:
		c.mu.Unlock()
		return ErrClosed
	case PhaseOpening, PhaseOpen:
		c.mu.Unlock()
		return nil
	}
	c.phase = PhaseOpening
	c.mu.Unlock()

	if c.d.Projects != nil {
		if err := c.d.Projects.RefreshProjects(ctx); err != nil {
			c.log.WithError(err).Warn("project list refresh failed; using cached projects")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseDisposed {
		return ErrClosed
	}
	c.phase = PhaseOpen
	c.token = c.d.Store.Subscribe(c.Invalidate)
	c.renderLocked()
	return nil
}

// Close unsubscribes and disposes the controller. Nothing is rendered afterwards and the
// controller cannot be reopened.
func (c *Controller) Close() {
	c.mu.Lock()
	tok := c.token
	c.token = ""
	c.phase = PhaseDisposed
	c.filter.Clear()
	c.mu.Unlock()
	if tok != "" {
		c.d.Store.Unsubscribe(tok)
	}
}

// Invalidate re-renders an open board with the current filter. It is the store
// subscription handler.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseOpen {
		return
	}
	c.renderLocked()
}

// Restore applies persisted view state: it selects the project, persists the selection
// and makes sure the project is loaded.
func (c *Controller) Restore(ctx context.Context, st RestoreState) error {
	if c.Phase() == PhaseDisposed {
		return ErrClosed
	}
	if st.ProjectID == "" {
		return nil
	}
	c.d.Store.SetSelectedProjectID(st.ProjectID)
	if err := c.saveSelection(st.ProjectID); err != nil {
		return err
	}
	if err := c.d.Loader.EnsureLoaded(ctx, st.ProjectID); err != nil {
		return fmt.Errorf("load project %s: %w", st.ProjectID, err)
	}
	return nil
}

// State returns the view state to persist.
func (c *Controller) State() RestoreState {
	return RestoreState{ProjectID: c.d.Store.SelectedProjectID()}
}

// ModuleFilter returns the current module filter.
func (c *Controller) ModuleFilter() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Get()
}

// SetModuleFilter changes the module filter; an empty id shows all modules.
func (c *Controller) SetModuleFilter(moduleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if c.filter.Set(moduleID) {
		c.renderLocked()
	}
	return nil
}

// SelectProject switches every board to projectID, persists the choice and syncs it.
// An empty id is ignored.
func (c *Controller) SelectProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return nil
	}
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.d.Store.SetSelectedProjectID(projectID)
	if err := c.saveSelection(projectID); err != nil {
		return err
	}
	return c.sync(ctx, false, projectID)
}

// Sync syncs the selected project. The sync control is disabled until it completes,
// whatever the outcome; a second trigger meanwhile gets ErrSyncInProgress.
func (c *Controller) Sync(ctx context.Context, force bool) error {
	return c.sync(ctx, force, "")
}

func (c *Controller) sync(ctx context.Context, force bool, projectID string) (err error) {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.syncing {
		c.mu.Unlock()
		return ErrSyncInProgress
	}
	c.syncing = true
	c.renderLocked()
	if projectID == "" {
		projectID = c.d.Store.SelectedProjectID()
	}
	c.mu.Unlock()

	// Runs even if the syncer panics, so the control never stays disabled.
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.syncing = false
		if c.phase != PhaseOpen {
			err = ErrClosed
			return
		}
		c.renderLocked()
	}()

	if err := c.d.Syncer.Sync(ctx, force, projectID); err != nil {
		c.log.WithError(err).WithField("project", projectID).Warn("sync failed")
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Syncing reports whether a sync started from this board is running.
func (c *Controller) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

// OpenNote ensures the note of a work item on the selected project exists and returns
// its path for the host to open.
func (c *Controller) OpenNote(ctx context.Context, itemID string) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	item, ok := c.findItem(itemID)
	if !ok {
		return "", fmt.Errorf("work item %s not found", itemID)
	}
	path, err := c.d.Notes.EnsureNote(ctx, item)
	if err != nil {
		return "", fmt.Errorf("note for %s: %w", itemID, err)
	}
	return path, nil
}

// CreateWorkItem creates a work item on the selected project.
func (c *Controller) CreateWorkItem(ctx context.Context, name, stateID string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.d.Creator == nil {
		return errors.New("work item creation is not configured")
	}
	if err := c.d.Creator.Create(ctx, c.d.Store.SelectedProjectID(), name, stateID); err != nil {
		return err
	}
	return nil
}

// Frame builds the current frame without pushing it.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked()
}

func (c *Controller) findItem(id string) (repository.WorkItem, bool) {
	data := c.d.Store.ProjectData(c.d.Store.SelectedProjectID())
	for _, item := range data.WorkItems {
		if item.ID == id {
			return item, true
		}
	}
	return repository.WorkItem{}, false
}

func (c *Controller) saveSelection(id string) error {
	if c.d.Settings == nil {
		return nil
	}
	if err := c.d.Settings.SaveSelectedProject(id); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (c *Controller) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkOpenLocked()
}

func (c *Controller) checkOpenLocked() error {
	switch c.phase {
	case PhaseOpen:
		return nil
	case PhaseDisposed:
		return ErrClosed
	}
	return ErrNotOpen
}

func (c *Controller) frameLocked() Frame {
	f := BuildFrame(c.d.Store, c.d.Store.SelectedProjectID(), c.d.DefaultProjectID, c.filter.Snapshot())
	f.Syncing = c.syncing
	return f
}

func (c *Controller) renderLocked() {
	c.renders++
	c.d.Renderer.Render(c.frameLocked())
}
