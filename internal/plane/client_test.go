package plane

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "acme", "secret", time.Second)
	c.PageSize = 2
	return c
}

func TestProjectsFollowsCursor(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.Equal(t, "/api/v1/workspaces/acme/projects/", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			io.WriteString(w, `{"results":[{"id":"p1","name":"Alpha","identifier":"AL"},{"id":"p2","name":"Beta","identifier":"BE"}],"next_cursor":"2:1:0","next_page_results":true}`)
		case "2:1:0":
			io.WriteString(w, `{"results":[{"id":"p3","name":"Gamma","identifier":"GA"}],"next_cursor":"2:2:0","next_page_results":false}`)
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	})

	got, err := c.Projects(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, got, 3)
	require.Equal(t, "Gamma", got[2].Name)
}

func TestWorkItemsDecodeLegacyFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/workspaces/acme/projects/p1/issues/", r.URL.Path)
		io.WriteString(w, `{"results":[
			{"id":"i1","name":"New","sequence_id":4,"state_id":"s1","module":"m1"},
			{"id":"i2","name":"Old","state":"s2","module_id":"m2","state_id":null}
		],"next_page_results":false}`)
	})

	got, err := c.WorkItems(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "s1", *got[0].StateID)
	require.Nil(t, got[0].State)
	require.Equal(t, "m1", *got[0].Module)
	require.Equal(t, 4, got[0].SequenceID)
	require.Nil(t, got[1].StateID)
	require.Equal(t, "s2", *got[1].State)
	require.Equal(t, "m2", *got[1].ModuleID)
}

func TestErrorStatusMapsToSentinels(t *testing.T) {
	status := http.StatusUnauthorized
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, `{"error":"nope"}`)
	})

	_, err := c.States(context.Background(), "p1")
	require.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Contains(t, apiErr.Body, "nope")

	status = http.StatusNotFound
	_, err = c.Modules(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	status = http.StatusInternalServerError
	_, err = c.Modules(context.Background(), "p1")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrUnauthorized)
}

func TestCreateWorkItemPostsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/workspaces/acme/projects/p1/issues/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.True(t, strings.Contains(string(body), `"name":"Write docs"`), string(body))
		require.True(t, strings.Contains(string(body), `"state":"s1"`), string(body))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"i9","name":"Write docs","state_id":"s1","sequence_id":9}`)
	})

	got, err := c.CreateWorkItem(context.Background(), "p1", CreateWorkItem{Name: "Write docs", StateID: "s1"})
	require.NoError(t, err)
	require.Equal(t, "i9", got.ID)
	require.Equal(t, 9, got.SequenceID)
}

func TestModuleItemsPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/workspaces/acme/projects/p1/modules/m1/module-issues/", r.URL.Path)
		io.WriteString(w, `{"results":[{"id":"x","issue":"i1","module":"m1"}]}`)
	})

	got, err := c.ModuleItems(context.Background(), "p1", "m1")
	require.NoError(t, err)
	require.Equal(t, []ModuleItem{{ID: "x", Issue: "i1", Module: "m1"}}, got)
}
