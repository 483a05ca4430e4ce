package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

const (
	minColumnWidth = 24
	maxColumnWidth = 40
	columnGap      = 1
)

// View renders header, board, status bar and footer.
func (a *App) View() string {
	if !a.loaded {
		return "Loading…"
	}
	var sections []string
	sections = append(sections, a.renderHeader())
	switch {
	case a.picker != nil:
		sections = append(sections, renderPicker(a.picker, a.width))
	case a.inputOn:
		box := modalStyle.Render(modalTitleStyle.Render("New work item") + "\n" + a.input.View())
		sections = append(sections, box)
	default:
		sections = append(sections, a.renderBoard())
	}
	if a.status != "" {
		style := statusBarStyle
		if a.isErr {
			style = statusErrStyle
		}
		sections = append(sections, a.fill(style).Render(a.status))
	}
	sections = append(sections, a.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) fill(s lipgloss.Style) lipgloss.Style {
	if a.width > 0 {
		return s.Width(a.width)
	}
	return s
}

func (a *App) renderHeader() string {
	parts := []string{headerAppStyle.Render(a.frame.Title)}
	if a.frame.ModuleFilter != "" {
		parts = append(parts, headerMetaStyle.Render("  module: "+optionLabel(a.frame.ModuleOptions, a.frame.ModuleFilter)))
	}
	if a.frame.Syncing {
		parts = append(parts, syncingStyle.Render("  Syncing…"))
	}
	return a.fill(headerBarStyle).Render(strings.Join(parts, ""))
}

func (a *App) renderFooter() string {
	scope := scopeBoard
	switch {
	case a.picker != nil:
		scope = scopePicker
	case a.inputOn:
		scope = scopeInput
	}
	bindings := a.keys.HelpBindings(scope)
	var out string
	if a.showHelp && scope == scopeBoard {
		out = a.help.FullHelpView(chunk(bindings, 4))
	} else {
		out = a.help.ShortHelpView(bindings)
	}
	return a.fill(footerStyle).Render(out)
}

func (a *App) renderBoard() string {
	if a.frame.Empty {
		return emptyStyle.Render(a.frame.EmptyText)
	}
	cols := a.frame.Columns
	width := a.columnWidth(len(cols))
	first, last := a.visibleColumns(len(cols), width)

	rendered := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		rendered = append(rendered, a.renderColumn(cols[i], i == a.col, width))
		if i < last-1 {
			rendered = append(rendered, strings.Repeat(" ", columnGap))
		}
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if first > 0 || last < len(cols) {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("columns %d–%d of %d", first+1, last, len(cols)))
	}
	return out
}

func (a *App) columnWidth(n int) int {
	if n == 0 || a.width <= 0 {
		return maxColumnWidth
	}
	w := (a.width - columnGap*(n-1)) / n
	return min(max(w, minColumnWidth), maxColumnWidth)
}

// visibleColumns returns the window of columns that fits the terminal and contains the
// cursor column.
func (a *App) visibleColumns(n, width int) (int, int) {
	if a.width <= 0 {
		return 0, n
	}
	fit := max((a.width+columnGap)/(width+columnGap), 1)
	if fit >= n {
		return 0, n
	}
	first := 0
	if a.col >= fit {
		first = a.col - fit + 1
	}
	return first, first + fit
}

func (a *App) renderColumn(col view.ColumnView, active bool, width int) string {
	style := columnStyle.Width(width - 2)
	if col.Color != "" {
		style = style.
			BorderForeground(lipgloss.Color(board.Tint(col.Color, 0.2, string(colorBase)))).
			Background(lipgloss.Color(board.Tint(col.Color, 0.08, string(colorBase))))
	}
	if active {
		style = style.BorderForeground(colorFocus)
	}

	inner := width - 4
	head := columnTitleStyle.Render(truncate(col.Title, inner-4)) + " " + mutedStyle.Render(fmt.Sprintf("%d", col.Count))
	lines := []string{head}
	for i, c := range col.Cards {
		lines = append(lines, a.renderCard(c, active && i == a.card, inner))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (a *App) renderCard(c view.Card, active bool, width int) string {
	st := cardStyle
	if active {
		st = cardActiveStyle
	}
	name := st.Width(width).Render(truncate(c.Name, width-2))

	var meta []string
	if c.Identifier != "" {
		meta = append(meta, pillStyle.Render(c.Identifier))
	}
	if c.Priority != "" && c.Priority != "none" {
		meta = append(meta, lipgloss.NewStyle().Foreground(priorityColor(c.Priority)).Render(c.Priority))
	}
	if c.Module != "" {
		meta = append(meta, mutedStyle.Render(truncate(c.Module, width/2)))
	}
	if len(meta) == 0 {
		return name
	}
	return name + "\n " + strings.Join(meta, " ")
}

func optionLabel(opts []view.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	return append(out, items)
}
