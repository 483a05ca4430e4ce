// Package server exposes boards as JSON over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/plane"
	"github.com/Arcodify/obsidian-plane-plugin/internal/service"
	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

// Store is the read side of the work-item store.
type Store interface {
	view.FrameSource
	SelectedProjectID() string
}

// Deps wires the handlers.
type Deps struct {
	Store            Store
	Loader           view.Loader
	Syncer           view.Syncer
	DefaultProjectID string
}

type projectResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier,omitempty"`
	Label      string `json:"label"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New returns an echo instance with the sonic serializer, request logging and every
// route registered.
func New(d Deps, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = SonicSerializer{}
	e.Use(requestLogger(logger))
	Register(e, d, logger)
	return e
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, d Deps, logger *log.Logger) {
	e.GET("/api/projects", getProjects(d))
	e.GET("/api/board", getBoard(d, logger))
	e.POST("/api/sync", postSync(d, logger))
	e.GET("/healthz", healthz)
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func getProjects(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		projects := d.Store.Projects()
		out := make([]projectResponse, 0, len(projects))
		for _, p := range projects {
			out = append(out, projectResponse{
				ID:         p.ID,
				Name:       p.Name,
				Identifier: p.Identifier,
				Label:      d.Store.ProjectLabel(p.ID),
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (d Deps) projectParam(c echo.Context) string {
	if id := c.QueryParam("project"); id != "" {
		return id
	}
	if id := d.Store.SelectedProjectID(); id != "" {
		return id
	}
	return d.DefaultProjectID
}

func getBoard(d Deps, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := d.projectParam(c)
		if projectID != "" {
			if err := d.Loader.EnsureLoaded(c.Request().Context(), projectID); err != nil {
				logger.WithError(err).WithField("project", projectID).Warn("load board failed")
				return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
			}
		}
		frame := view.BuildFrame(d.Store, projectID, d.DefaultProjectID, board.Filter{ModuleID: c.QueryParam("module")})
		return c.JSON(http.StatusOK, frame)
	}
}

func postSync(d Deps, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		force := false
		if v := c.QueryParam("force"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid force"})
			}
			force = b
		}
		projectID := d.projectParam(c)
		if err := d.Syncer.Sync(c.Request().Context(), force, projectID); err != nil {
			logger.WithError(err).WithField("project", projectID).Warn("sync failed")
			return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoProject):
		return http.StatusBadRequest
	case errors.Is(err, plane.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, plane.ErrUnauthorized):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var apiErr *plane.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.WithFields(log.Fields{
				"method":   c.Request().Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			}).Debug("request")
			return nil
		}
	}
}

// SonicSerializer is an echo.JSONSerializer backed by sonic.
type SonicSerializer struct{}

func (SonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (SonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
