package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

type fakeSource struct {
	mu       sync.Mutex
	projects []repository.Project
	data     map[string]repository.ProjectData
	err      error
	loads    int
}

func (f *fakeSource) Projects(context.Context) ([]repository.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects, f.err
}

func (f *fakeSource) Load(_ context.Context, id string) (repository.ProjectData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.data[id], f.err
}

func newTestStore(src *fakeSource) *Store {
	logger, _ := test.NewNullLogger()
	return New(src, logger)
}

func TestSubscribeNotifiesInOrderUntilUnsubscribed(t *testing.T) {
	s := newTestStore(&fakeSource{})

	var calls []string
	a := s.Subscribe(func() { calls = append(calls, "a") })
	s.Subscribe(func() { calls = append(calls, "b") })
	require.Equal(t, 2, s.Subscribers())

	s.SetSelectedProjectID("p1")
	require.Equal(t, []string{"a", "b"}, calls)

	require.True(t, s.Unsubscribe(a))
	require.False(t, s.Unsubscribe(a))
	s.SetSelectedProjectID("p2")
	require.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestSetSelectedProjectLastWriterWins(t *testing.T) {
	s := newTestStore(&fakeSource{})
	notified := 0
	s.Subscribe(func() { notified++ })

	s.SetSelectedProjectID("p1")
	s.SetSelectedProjectID("p2")
	s.SetSelectedProjectID("p2")

	require.Equal(t, "p2", s.SelectedProjectID())
	require.Equal(t, 2, notified, "re-selecting the same project is not a change")
}

func TestPanickingHandlerDoesNotStopFanOut(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(&fakeSource{}, logger)

	s.Subscribe(func() { panic("boom") })
	reached := false
	s.Subscribe(func() { reached = true })

	s.SetSelectedProjectID("p1")
	require.True(t, reached)
	require.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestLoadReplacesSnapshot(t *testing.T) {
	src := &fakeSource{data: map[string]repository.ProjectData{
		"p1": {WorkItems: []repository.WorkItem{{ID: "w1"}}},
	}}
	s := newTestStore(src)
	notified := 0
	s.Subscribe(func() { notified++ })

	require.False(t, s.IsLoaded("p1"))
	require.Empty(t, s.ProjectData("p1").WorkItems)

	require.NoError(t, s.Load(context.Background(), "p1"))
	require.True(t, s.IsLoaded("p1"))
	require.Len(t, s.ProjectData("p1").WorkItems, 1)
	require.Equal(t, 1, notified)

	s.SetSelectedProjectID("p1")
	require.Len(t, s.SelectedData().WorkItems, 1)
}

func TestLoadErrorKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{data: map[string]repository.ProjectData{"p1": {WorkItems: []repository.WorkItem{{ID: "w1"}}}}}
	s := newTestStore(src)
	require.NoError(t, s.Load(context.Background(), "p1"))

	src.err = errors.New("disk gone")
	err := s.Load(context.Background(), "p1")
	require.ErrorContains(t, err, "disk gone")
	require.Len(t, s.ProjectData("p1").WorkItems, 1)
}

func TestRefreshReloadsProjectsAndLoadedSnapshots(t *testing.T) {
	src := &fakeSource{
		projects: []repository.Project{{ID: "p1", Name: "Web", Identifier: "WEB"}, {ID: "p2", Name: "Ops"}},
		data:     map[string]repository.ProjectData{"p1": {}},
	}
	s := newTestStore(src)
	require.NoError(t, s.Load(context.Background(), "p1"))

	src.data["p1"] = repository.ProjectData{WorkItems: []repository.WorkItem{{ID: "new"}}}
	notified := 0
	s.Subscribe(func() { notified++ })
	require.NoError(t, s.Refresh(context.Background()))

	require.Equal(t, 1, notified)
	require.Len(t, s.Projects(), 2)
	require.Equal(t, "new", s.ProjectData("p1").WorkItems[0].ID)
	require.False(t, s.IsLoaded("p2"))

	require.Equal(t, "Web (WEB)", s.ProjectLabel("p1"))
	require.Equal(t, "Ops", s.ProjectLabel("p2"))
	require.Equal(t, "ghost", s.ProjectLabel("ghost"))
	require.Equal(t, "", s.ProjectLabel(""))
}

// gatedSource blocks the first Load after it is armed until release is closed.
type gatedSource struct {
	*fakeSource
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSource) Load(ctx context.Context, id string) (repository.ProjectData, error) {
	data, err := g.fakeSource.Load(ctx, id)
	if g.entered == nil {
		return data, err
	}
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return data, err
}

func TestRefreshDoesNotOverwriteNewerLoad(t *testing.T) {
	ctx := context.Background()
	old := repository.ProjectData{WorkItems: []repository.WorkItem{{ID: "old"}}}
	fresh := repository.ProjectData{WorkItems: []repository.WorkItem{{ID: "new"}}}
	src := &gatedSource{fakeSource: &fakeSource{data: map[string]repository.ProjectData{"p1": old}}}
	logger, _ := test.NewNullLogger()
	s := New(src, logger)
	require.NoError(t, s.Load(ctx, "p1"))

	src.entered = make(chan struct{})
	src.release = make(chan struct{})
	refreshed := make(chan error, 1)
	go func() { refreshed <- s.Refresh(ctx) }()
	<-src.entered

	// The cache changes while Refresh holds its stale read.
	src.mu.Lock()
	src.data["p1"] = fresh
	src.mu.Unlock()
	loaded := make(chan error, 1)
	go func() { loaded <- s.Load(ctx, "p1") }()

	select {
	case err := <-loaded:
		t.Fatalf("load finished while refresh was reading: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(src.release)
	require.NoError(t, <-refreshed)
	require.NoError(t, <-loaded)
	require.Equal(t, "new", s.ProjectData("p1").WorkItems[0].ID)
}
