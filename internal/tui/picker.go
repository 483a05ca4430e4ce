package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

type pickerKind int

const (
	pickerProject pickerKind = iota
	pickerModule
)

// pickerState is a single-choice list over view options with type-to-filter.
type pickerState struct {
	kind     pickerKind
	title    string
	items    []view.Option
	filtered []view.Option
	current  string
	query    string
	cursor   int
}

func newPicker(kind pickerKind, title string, items []view.Option, current string) *pickerState {
	p := &pickerState{kind: kind, title: title, items: append([]view.Option(nil), items...), current: current}
	p.rebuild()
	for i, it := range p.filtered {
		if it.Value == current {
			p.cursor = i
			break
		}
	}
	return p
}

func (p *pickerState) rebuild() {
	q := strings.ToLower(strings.TrimSpace(p.query))
	p.filtered = p.filtered[:0]
	for _, it := range p.items {
		if q == "" || strings.Contains(strings.ToLower(it.Label), q) {
			p.filtered = append(p.filtered, it)
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = max(len(p.filtered)-1, 0)
	}
}

type pickerResult struct {
	done      bool
	cancelled bool
	choice    view.Option
}

func (p *pickerState) handleKey(keyName string) pickerResult {
	switch keyName {
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "j", "down":
		if p.cursor < len(p.filtered)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.filtered) == 0 {
			return pickerResult{}
		}
		return pickerResult{done: true, choice: p.filtered[p.cursor]}
	case "esc":
		return pickerResult{done: true, cancelled: true}
	case "backspace":
		if p.query != "" {
			p.query = p.query[:len(p.query)-1]
			p.rebuild()
		}
	default:
		if len(keyName) == 1 && keyName[0] >= ' ' && keyName[0] <= '~' {
			p.query += keyName
			p.rebuild()
		}
	}
	return pickerResult{}
}

func renderPicker(p *pickerState, width int) string {
	var lines []string
	lines = append(lines, modalTitleStyle.Render(p.title))
	if p.query != "" {
		lines = append(lines, mutedStyle.Render("Filter: ")+p.query)
	}
	if len(p.filtered) == 0 {
		lines = append(lines, mutedStyle.Render("(no matches)"))
	}
	for i, it := range p.filtered {
		prefix := "  "
		label := it.Label
		if i == p.cursor {
			prefix = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		if it.Value == p.current {
			label += currentStyle.Render(" ✓")
		}
		lines = append(lines, prefix+label)
	}
	box := modalStyle.Render(strings.Join(lines, "\n"))
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	return box
}
