package board

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

// ModuleName returns the name of module id, or id itself when the module is unknown.
func ModuleName(modules []repository.Module, id string) string {
	for _, m := range modules {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

// maxSuggestDistance bounds how far a typo may be from a module name to be suggested.
const maxSuggestDistance = 3

// LookupModule resolves a user-typed module reference (id or name, case-insensitive).
// When nothing matches, the query is returned unchanged as the id so the board simply
// shows no items, and suggestion holds the closest module name if one is near enough.
func LookupModule(modules []repository.Module, query string) (id string, suggestion string, found bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", "", false
	}
	for _, m := range modules {
		if m.ID == q {
			return m.ID, "", true
		}
	}
	lower := strings.ToLower(q)
	for _, m := range modules {
		if strings.ToLower(m.Name) == lower {
			return m.ID, "", true
		}
	}
	best := maxSuggestDistance + 1
	for _, m := range modules {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(m.Name))
		if d < best {
			best = d
			suggestion = m.Name
		}
	}
	return q, suggestion, false
}
