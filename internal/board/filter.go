package board

// FilterState holds the optional module filter of one board view. The zero value means
// "all modules".
type FilterState struct {
	moduleID string
}

// Get returns the selected module id and whether a filter is set.
func (f *FilterState) Get() (string, bool) {
	return f.moduleID, f.moduleID != ""
}

// Set selects a module. An empty id clears the filter. Ids are not checked against the
// project's modules; an unknown id simply matches nothing. Set reports whether the value
// changed.
func (f *FilterState) Set(moduleID string) bool {
	if f.moduleID == moduleID {
		return false
	}
	f.moduleID = moduleID
	return true
}

// Clear removes the filter.
func (f *FilterState) Clear() {
	f.moduleID = ""
}

// Filter is the read-only value the projection works with.
type Filter struct {
	ModuleID string
}

// Snapshot returns the filter as a value for projection.
func (f *FilterState) Snapshot() Filter {
	return Filter{ModuleID: f.moduleID}
}

// Matches reports whether item passes the filter.
func (f Filter) Matches(moduleID string, ok bool) bool {
	if f.ModuleID == "" {
		return true
	}
	return ok && moduleID == f.ModuleID
}
