package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
	"github.com/Arcodify/obsidian-plane-plugin/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ptr(s string) *string { return &s }

type memSource struct {
	mu       sync.Mutex
	projects []repository.Project
	data     map[string]repository.ProjectData
}

func (s *memSource) Projects(context.Context) ([]repository.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects, nil
}

func (s *memSource) Load(_ context.Context, id string) (repository.ProjectData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[id], nil
}

type frameRecorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *frameRecorder) Render(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *frameRecorder) last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

type fakeSyncer struct {
	mu      sync.Mutex
	calls   []string
	forced  []bool
	err     error
	panics  bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeSyncer) Sync(_ context.Context, force bool, projectID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, projectID)
	f.forced = append(f.forced, force)
	err, panics := f.err, f.panics
	f.mu.Unlock()
	if panics {
		panic("syncer blew up")
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return err
}

type fakeLister struct {
	calls int
	err   error
}

func (f *fakeLister) RefreshProjects(context.Context) error {
	f.calls++
	return f.err
}

type fakeLoader struct{ loaded []string }

func (f *fakeLoader) EnsureLoaded(_ context.Context, id string) error {
	f.loaded = append(f.loaded, id)
	return nil
}

type fakeNotes struct{ items []string }

func (f *fakeNotes) EnsureNote(_ context.Context, item repository.WorkItem) (string, error) {
	f.items = append(f.items, item.ID)
	return "/notes/" + item.ID + ".md", nil
}

type fakeSettings struct{ saved []string }

func (f *fakeSettings) SaveSelectedProject(id string) error {
	f.saved = append(f.saved, id)
	return nil
}

type harness struct {
	ctrl     *Controller
	store    *store.Store
	src      *memSource
	render   *frameRecorder
	syncer   *fakeSyncer
	lister   *fakeLister
	loader   *fakeLoader
	notes    *fakeNotes
	settings *fakeSettings
}

func sampleData() repository.ProjectData {
	return repository.ProjectData{
		States: []repository.State{
			{ID: "s1", Name: "Todo", Color: ptr("#336699")},
			{ID: "s2", Name: "Done"},
		},
		Modules: []repository.Module{{ID: "m1", Name: "Launch"}},
		WorkItems: []repository.WorkItem{
			{ID: "a", Name: "A", StateID: ptr("s1"), Module: ptr("m1"), Identifier: ptr("WEB-1")},
			{ID: "b", Name: "B", State: ptr("s2")},
			{ID: "c", Name: "C", ModuleID: ptr("m1")},
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	src := &memSource{
		projects: []repository.Project{{ID: "p1", Name: "Website", Identifier: "WEB"}, {ID: "p2", Name: "Ops"}},
		data:     map[string]repository.ProjectData{"p1": sampleData()},
	}
	h := &harness{
		store:    store.New(src, logger),
		src:      src,
		render:   &frameRecorder{},
		syncer:   &fakeSyncer{},
		lister:   &fakeLister{},
		loader:   &fakeLoader{},
		notes:    &fakeNotes{},
		settings: &fakeSettings{},
	}
	require.NoError(t, h.store.ReloadProjects(context.Background()))
	h.ctrl = New(Deps{
		Store:    h.store,
		Syncer:   h.syncer,
		Loader:   h.loader,
		Projects: h.lister,
		Notes:    h.notes,
		Settings: h.settings,
		Renderer: h.render,
		Log:      logger,
	})
	return h
}

func (h *harness) openOn(t *testing.T, projectID string) {
	t.Helper()
	h.store.SetSelectedProjectID(projectID)
	require.NoError(t, h.store.Load(context.Background(), projectID))
	require.NoError(t, h.ctrl.Open(context.Background()))
}

func TestOpenRefreshesSubscribesAndRenders(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, PhaseClosed, h.ctrl.Phase())

	require.NoError(t, h.ctrl.Open(context.Background()))
	require.Equal(t, PhaseOpen, h.ctrl.Phase())
	require.Equal(t, 1, h.lister.calls)
	require.Equal(t, 1, h.store.Subscribers())
	require.Equal(t, 1, h.render.count())
	require.Equal(t, "Plane Board", h.render.last().Title)

	// Opening again is a no-op.
	require.NoError(t, h.ctrl.Open(context.Background()))
	require.Equal(t, 1, h.store.Subscribers())
	require.Equal(t, 1, h.lister.calls)
}

func TestOpenSurvivesRefreshFailure(t *testing.T) {
	h := newHarness(t)
	h.lister.err = errors.New("offline")
	require.NoError(t, h.ctrl.Open(context.Background()))
	require.Equal(t, PhaseOpen, h.ctrl.Phase())
	require.Len(t, h.render.last().ProjectOptions, 3)
}

func TestStoreChangeRerendersWithCurrentFilter(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	require.NoError(t, h.ctrl.SetModuleFilter("m1"))
	before := h.render.count()

	require.NoError(t, h.store.Load(context.Background(), "p1"))
	require.Equal(t, before+1, h.render.count())
	f := h.render.last()
	require.Equal(t, "m1", f.ModuleFilter)
	require.Len(t, f.Columns, 2)
	require.Equal(t, "Todo", f.Columns[0].Title)
	require.Equal(t, board.UnspecifiedTitle, f.Columns[1].Title)
}

func TestCloseIsIrreversible(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	h.ctrl.Close()
	require.Equal(t, PhaseDisposed, h.ctrl.Phase())
	require.Equal(t, 0, h.store.Subscribers())

	n := h.render.count()
	require.NoError(t, h.store.Load(context.Background(), "p1"))
	h.ctrl.Invalidate()
	require.Equal(t, n, h.render.count())

	require.ErrorIs(t, h.ctrl.Open(context.Background()), ErrClosed)
	require.ErrorIs(t, h.ctrl.SetModuleFilter("m1"), ErrClosed)
	require.ErrorIs(t, h.ctrl.Sync(context.Background(), false), ErrClosed)
	require.ErrorIs(t, h.ctrl.Restore(context.Background(), RestoreState{ProjectID: "p1"}), ErrClosed)
	_, ok := h.ctrl.ModuleFilter()
	require.False(t, ok)
}

func TestActionsBeforeOpen(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.ctrl.SetModuleFilter("m1"), ErrNotOpen)
	require.ErrorIs(t, h.ctrl.Sync(context.Background(), false), ErrNotOpen)
	_, err := h.ctrl.OpenNote(context.Background(), "a")
	require.ErrorIs(t, err, ErrNotOpen)
	h.ctrl.Invalidate()
	require.Equal(t, 0, h.render.count())
}

func TestModuleFilter(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	n := h.render.count()

	require.NoError(t, h.ctrl.SetModuleFilter("m1"))
	require.Equal(t, n+1, h.render.count())
	f := h.render.last()
	require.Equal(t, 2, f.Columns[0].Count+f.Columns[1].Count)

	require.NoError(t, h.ctrl.SetModuleFilter("m1"))
	require.Equal(t, n+1, h.render.count())

	require.NoError(t, h.ctrl.SetModuleFilter("nope"))
	f = h.render.last()
	require.True(t, f.Empty)
	require.Empty(t, f.Columns)
	require.Equal(t, EmptyBoardText, f.EmptyText)

	require.NoError(t, h.ctrl.SetModuleFilter(""))
	f = h.render.last()
	require.Len(t, f.Columns, 3)
	_, ok := h.ctrl.ModuleFilter()
	require.False(t, ok)
}

func TestSyncGuardsConcurrentTriggers(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	h.syncer.started = make(chan struct{}, 1)
	h.syncer.release = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Sync(context.Background(), false) }()
	<-h.syncer.started

	require.True(t, h.ctrl.Syncing())
	require.True(t, h.render.last().Syncing)
	require.ErrorIs(t, h.ctrl.Sync(context.Background(), true), ErrSyncInProgress)

	close(h.syncer.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sync did not complete")
	}
	require.False(t, h.ctrl.Syncing())
	require.False(t, h.render.last().Syncing)
	require.Equal(t, []string{"p1"}, h.syncer.calls)
}

func TestSyncFailureReenablesControl(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	h.syncer.err = errors.New("boom")

	err := h.ctrl.Sync(context.Background(), false)
	require.ErrorContains(t, err, "boom")
	require.False(t, h.ctrl.Syncing())
	require.False(t, h.render.last().Syncing)

	h.syncer.err = nil
	require.NoError(t, h.ctrl.Sync(context.Background(), true))
	require.Equal(t, []bool{false, true}, h.syncer.forced)
}

func TestSyncPanicReenablesControl(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	h.syncer.panics = true

	require.Panics(t, func() { _ = h.ctrl.Sync(context.Background(), false) })
	require.False(t, h.ctrl.Syncing())
	require.False(t, h.render.last().Syncing)

	h.syncer.panics = false
	require.NoError(t, h.ctrl.Sync(context.Background(), false))
}

func TestCompletionAfterCloseIsDropped(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	h.syncer.started = make(chan struct{}, 1)
	h.syncer.release = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Sync(context.Background(), false) }()
	<-h.syncer.started
	h.ctrl.Close()
	n := h.render.count()

	close(h.syncer.release)
	require.ErrorIs(t, <-done, ErrClosed)
	require.Equal(t, n, h.render.count())
}

func TestSelectProject(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Open(context.Background()))

	require.NoError(t, h.ctrl.SelectProject(context.Background(), ""))
	require.Empty(t, h.syncer.calls)
	require.Empty(t, h.settings.saved)

	require.NoError(t, h.ctrl.SelectProject(context.Background(), "p2"))
	require.Equal(t, "p2", h.store.SelectedProjectID())
	require.Equal(t, []string{"p2"}, h.settings.saved)
	require.Equal(t, []string{"p2"}, h.syncer.calls)
	require.Equal(t, []bool{false}, h.syncer.forced)
	require.Equal(t, "Plane Board: Ops", h.render.last().Title)
	require.Equal(t, "Plane Board: Ops", h.ctrl.DisplayText())
}

func TestSelectedProjectIsSharedAcrossBoards(t *testing.T) {
	h := newHarness(t)
	other := &frameRecorder{}
	second := New(Deps{Store: h.store, Syncer: h.syncer, Loader: h.loader, Renderer: other})
	require.NoError(t, h.ctrl.Open(context.Background()))
	require.NoError(t, second.Open(context.Background()))

	require.NoError(t, h.ctrl.SelectProject(context.Background(), "p1"))
	require.Equal(t, "Plane Board: Website (WEB)", other.last().Title)
	second.Close()
}

func TestRestore(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Restore(context.Background(), RestoreState{}))
	require.Empty(t, h.loader.loaded)

	require.NoError(t, h.ctrl.Restore(context.Background(), RestoreState{ProjectID: "p1"}))
	require.Equal(t, "p1", h.store.SelectedProjectID())
	require.Equal(t, []string{"p1"}, h.settings.saved)
	require.Equal(t, []string{"p1"}, h.loader.loaded)
	require.Equal(t, RestoreState{ProjectID: "p1"}, h.ctrl.State())
}

func TestOpenNote(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")

	path, err := h.ctrl.OpenNote(context.Background(), "b")
	require.NoError(t, err)
	require.Equal(t, "/notes/b.md", path)
	require.Equal(t, []string{"b"}, h.notes.items)

	_, err = h.ctrl.OpenNote(context.Background(), "zzz")
	require.Error(t, err)
}

func TestCreateWorkItemWithoutCreator(t *testing.T) {
	h := newHarness(t)
	h.openOn(t, "p1")
	require.Error(t, h.ctrl.CreateWorkItem(context.Background(), "x", ""))
}
