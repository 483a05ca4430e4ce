// Package board projects cached work items into kanban columns.
//
// Everything here is pure: the same items, states and filter always produce the same
// columns in the same order. Missing or unknown references never fail; they fall into
// the "unspecified" column, the raw module id, or a neutral gray.
package board
