package view

import (
	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

const (
	baseTitle          = "Plane Board"
	SelectProjectLabel = "Select project"
	AllModulesLabel    = "All modules"
	EmptyBoardText     = "No work items. Sync or create one."

	columnBackgroundAlpha = 0.08
	columnBorderAlpha     = 0.2
)

// Option is one entry of a picker. The first option of each picker has an empty Value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Card is one work item as displayed.
type Card struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier,omitempty"`
	Priority   string `json:"priority,omitempty"`
	ModuleID   string `json:"module_id,omitempty"`
	Module     string `json:"module,omitempty"`
}

// ColumnView is a projected column with its display tint.
type ColumnView struct {
	StateKey   string `json:"state_key"`
	Title      string `json:"title"`
	Color      string `json:"color,omitempty"`
	Count      int    `json:"count"`
	Background string `json:"background,omitempty"`
	Border     string `json:"border,omitempty"`
	Cards      []Card `json:"cards"`
}

// Frame is everything a render adapter needs to draw one board.
type Frame struct {
	Title          string       `json:"title"`
	ProjectID      string       `json:"project_id"`
	ProjectValue   string       `json:"project_value"`
	ProjectOptions []Option     `json:"project_options"`
	ModuleFilter   string       `json:"module_filter"`
	ModuleOptions  []Option     `json:"module_options"`
	Columns        []ColumnView `json:"columns"`
	Empty          bool         `json:"empty"`
	EmptyText      string       `json:"empty_text,omitempty"`
	Syncing        bool         `json:"syncing"`
}

// FrameSource is the read side of the store a frame is built from.
type FrameSource interface {
	Projects() []repository.Project
	ProjectLabel(id string) string
	ProjectData(id string) repository.ProjectData
}

// DisplayText is the board's title for a project label.
func DisplayText(label string) string {
	if label == "" {
		return baseTitle
	}
	return baseTitle + ": " + label
}

// BuildFrame projects the board of projectID through filter.
func BuildFrame(src FrameSource, projectID, defaultProjectID string, filter board.Filter) Frame {
	data := src.ProjectData(projectID)

	f := Frame{
		Title:        DisplayText(src.ProjectLabel(projectID)),
		ProjectID:    projectID,
		ProjectValue: projectID,
		ModuleFilter: filter.ModuleID,
	}
	if f.ProjectValue == "" {
		f.ProjectValue = defaultProjectID
	}

	f.ProjectOptions = append(f.ProjectOptions, Option{Label: SelectProjectLabel})
	for _, p := range src.Projects() {
		f.ProjectOptions = append(f.ProjectOptions, Option{Value: p.ID, Label: src.ProjectLabel(p.ID)})
	}
	f.ModuleOptions = append(f.ModuleOptions, Option{Label: AllModulesLabel})
	for _, m := range data.Modules {
		f.ModuleOptions = append(f.ModuleOptions, Option{Value: m.ID, Label: m.Name})
	}

	columns := board.Project(data.WorkItems, data.States, filter)
	if len(columns) == 0 {
		f.Empty = true
		f.EmptyText = EmptyBoardText
		return f
	}
	f.Columns = make([]ColumnView, 0, len(columns))
	for _, col := range columns {
		cv := ColumnView{
			StateKey: col.StateKey,
			Title:    col.Title,
			Color:    col.Color,
			Count:    len(col.Items),
			Cards:    make([]Card, 0, len(col.Items)),
		}
		if col.Color != "" {
			cv.Background = board.Dim(col.Color, columnBackgroundAlpha)
			cv.Border = board.Dim(col.Color, columnBorderAlpha)
		}
		for _, item := range col.Items {
			cv.Cards = append(cv.Cards, cardFor(item, data.Modules))
		}
		f.Columns = append(f.Columns, cv)
	}
	return f
}

func cardFor(item repository.WorkItem, modules []repository.Module) Card {
	c := Card{ID: item.ID, Name: item.Name}
	if item.Identifier != nil {
		c.Identifier = *item.Identifier
	}
	if item.Priority != nil {
		c.Priority = *item.Priority
	}
	if id, ok := board.ResolveModuleID(item); ok {
		c.ModuleID = id
		c.Module = board.ModuleName(modules, id)
	}
	return c
}
