package plane

import "time"

// Project is a Plane project as returned by the REST API.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// State is a workflow state.
type State struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Group    string  `json:"group"`
	Sequence float64 `json:"sequence"`
}

// Module is a project module.
type Module struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkItem is a Plane issue. Older API versions send state/module_id, newer ones
// state_id/module; all four are decoded and left for the board to resolve.
type WorkItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ProjectID  string    `json:"project"`
	SequenceID int       `json:"sequence_id"`
	Priority   string    `json:"priority"`
	StateID    *string   `json:"state_id"`
	State      *string   `json:"state"`
	Module     *string   `json:"module"`
	ModuleID   *string   `json:"module_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ModuleItem links a work item to a module.
type ModuleItem struct {
	ID     string `json:"id"`
	Issue  string `json:"issue"`
	Module string `json:"module"`
}

// CreateWorkItem is the body of a create request.
type CreateWorkItem struct {
	Name     string `json:"name"`
	StateID  string `json:"state,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// page is Plane's cursor pagination envelope.
type page[T any] struct {
	Results         []T    `json:"results"`
	NextCursor      string `json:"next_cursor"`
	NextPageResults bool   `json:"next_page_results"`
}
