package board

import "github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"

// UnspecifiedKey is the column key for items whose state cannot be resolved.
const UnspecifiedKey = "unspecified"

// UnspecifiedTitle is the column title used when no workflow state matches the key.
const UnspecifiedTitle = "Unspecified"

// ResolveStateKey returns the item's state reference, preferring StateID over the legacy
// State field, or UnspecifiedKey when neither is set.
func ResolveStateKey(item repository.WorkItem) string {
	if ref, ok := firstRef(item.StateID, item.State); ok {
		return ref
	}
	return UnspecifiedKey
}

// ResolveModuleID returns the item's module reference, preferring Module over the legacy
// ModuleID field.
func ResolveModuleID(item repository.WorkItem) (string, bool) {
	return firstRef(item.Module, item.ModuleID)
}

// firstRef returns the first set, non-empty reference in priority order.
func firstRef(refs ...*string) (string, bool) {
	for _, r := range refs {
		if r != nil && *r != "" {
			return *r, true
		}
	}
	return "", false
}
