package repository

import "time"

// Project represents a Plane project row.
type Project struct {
	ID         string
	Workspace  string
	Name       string
	Identifier string
	UpdatedAt  time.Time
}

// State represents a workflow state row.
type State struct {
	ID        string
	ProjectID string
	Name      string
	Color     *string
	Group     string
	Sequence  float64
}

// Module represents a module row.
type Module struct {
	ID        string
	ProjectID string
	Name      string
}

// WorkItem represents a cached work item. StateID/State and Module/ModuleID are the
// primary/legacy pairs Plane has used over time; both are kept as received.
type WorkItem struct {
	ID         string
	ProjectID  string
	Name       string
	Identifier *string
	Priority   *string
	StateID    *string
	State      *string
	Module     *string
	ModuleID   *string
	SequenceID int
	UpdatedAt  time.Time
}

// ProjectData is a full snapshot of one project's board inputs.
type ProjectData struct {
	WorkItems []WorkItem
	Modules   []Module
	States    []State
}

// SyncRun records the last successful sync of a project.
type SyncRun struct {
	ProjectID string
	SyncedAt  time.Time
	Items     int
}
