package board

import "github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"

// Column is one kanban column. Color is empty when the state has none or is unknown.
type Column struct {
	StateKey string
	Title    string
	Color    string
	Items    []repository.WorkItem
}

// Project filters items and groups them into columns.
func Project(items []repository.WorkItem, states []repository.State, filter Filter) []Column {
	return GroupColumns(FilterItems(items, filter), states)
}

// FilterItems keeps the items whose resolved module matches the filter, in input order.
func FilterItems(items []repository.WorkItem, filter Filter) []repository.WorkItem {
	out := make([]repository.WorkItem, 0, len(items))
	for _, item := range items {
		if filter.Matches(ResolveModuleID(item)) {
			out = append(out, item)
		}
	}
	return out
}

// GroupColumns groups items by resolved state key. Columns appear in the order their key
// is first seen in items, not in workflow order. Items without a state always land in
// the Unspecified column, even if a workflow state happens to use the same id.
func GroupColumns(items []repository.WorkItem, states []repository.State) []Column {
	byID := make(map[string]repository.State, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}

	var columns []Column
	index := make(map[string]int)
	for _, item := range items {
		key := ResolveStateKey(item)
		i, ok := index[key]
		if !ok {
			col := Column{StateKey: key, Title: UnspecifiedTitle}
			if s, found := byID[key]; found && key != UnspecifiedKey {
				col.Title = s.Name
				if s.Color != nil {
					col.Color = *s.Color
				}
			}
			i = len(columns)
			index[key] = i
			columns = append(columns, col)
		}
		columns[i].Items = append(columns[i].Items, item)
	}
	return columns
}
