// Package plane is a small client for the Plane REST API (v1), covering what the board
// needs: projects, states, modules, work items and module membership.
package plane

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var (
	ErrUnauthorized = errors.New("plane: unauthorized")
	ErrNotFound     = errors.New("plane: not found")
)

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plane: status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

const maxErrorBody = 4 << 10

// Client talks to one Plane workspace.
type Client struct {
	BaseURL   string
	Workspace string
	APIKey    string
	PageSize  int
	HTTP      *http.Client
}

// NewClient returns a client with a timeout-bound http.Client.
func NewClient(baseURL, workspace, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Workspace: workspace,
		APIKey:    apiKey,
		PageSize:  100,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) workspacePath(parts ...string) string {
	segs := []string{"api", "v1", "workspaces", url.PathEscape(c.Workspace)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return c.BaseURL + "/" + strings.Join(segs, "/") + "/"
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	dec := sonic.ConfigStd.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// list walks every page of a cursor-paginated endpoint.
func list[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	size := c.PageSize
	if size <= 0 {
		size = 100
	}
	var out []T
	cursor := ""
	for {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(size))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var p page[T]
		if err := c.do(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		if !p.NextPageResults || p.NextCursor == "" || p.NextCursor == cursor {
			return out, nil
		}
		cursor = p.NextCursor
	}
}

// Projects lists the workspace's projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, c, c.workspacePath("projects"))
}

// States lists a project's workflow states.
func (c *Client) States(ctx context.Context, projectID string) ([]State, error) {
	return list[State](ctx, c, c.workspacePath("projects", projectID, "states"))
}

// Modules lists a project's modules.
func (c *Client) Modules(ctx context.Context, projectID string) ([]Module, error) {
	return list[Module](ctx, c, c.workspacePath("projects", projectID, "modules"))
}

// WorkItems lists a project's work items in the API's order.
func (c *Client) WorkItems(ctx context.Context, projectID string) ([]WorkItem, error) {
	return list[WorkItem](ctx, c, c.workspacePath("projects", projectID, "issues"))
}

// ModuleItems lists the work items attached to a module.
func (c *Client) ModuleItems(ctx context.Context, projectID, moduleID string) ([]ModuleItem, error) {
	return list[ModuleItem](ctx, c, c.workspacePath("projects", projectID, "modules", moduleID, "module-issues"))
}

// CreateWorkItem creates a work item and returns it.
func (c *Client) CreateWorkItem(ctx context.Context, projectID string, in CreateWorkItem) (WorkItem, error) {
	var out WorkItem
	err := c.do(ctx, http.MethodPost, c.workspacePath("projects", projectID, "issues"), in, &out)
	return out, err
}
