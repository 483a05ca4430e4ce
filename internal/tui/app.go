// Package tui is the terminal board: a bubbletea model that draws the frames a
// view.Controller pushes and turns key presses into controller actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

// Controller is the board controller the app drives.
type Controller interface {
	Open(ctx context.Context) error
	Close()
	Sync(ctx context.Context, force bool) error
	SelectProject(ctx context.Context, projectID string) error
	SetModuleFilter(moduleID string) error
	OpenNote(ctx context.Context, itemID string) (string, error)
	CreateWorkItem(ctx context.Context, name, stateID string) error
}

// Options tunes the app.
type Options struct {
	// Editor opens notes; defaults to $EDITOR, then vi.
	Editor string
	// Module is applied as the module filter once the board is open.
	Module string
}

// App ties the controller to the terminal.
type App struct {
	ctx  context.Context
	ctrl Controller
	sink *FrameSink
	keys *KeyRegistry
	help help.Model
	opts Options

	frame  view.Frame
	loaded bool
	width  int
	height int

	col  int
	card int

	picker   *pickerState
	input    textinput.Model
	inputOn  bool
	status   string
	isErr    bool
	showHelp bool
}

type actionDoneMsg struct {
	status string
	err    error
}

type noteReadyMsg struct{ path string }

type editorClosedMsg struct{ err error }

func New(ctx context.Context, ctrl Controller, sink *FrameSink, opts Options) *App {
	if opts.Editor == "" {
		opts.Editor = os.Getenv("EDITOR")
	}
	if opts.Editor == "" {
		opts.Editor = "vi"
	}
	ti := textinput.New()
	ti.Placeholder = "work item name"
	ti.CharLimit = 255
	h := help.New()
	h.Styles.ShortKey = helpKeyStyle
	h.Styles.ShortDesc = helpDescStyle
	h.Styles.ShortSeparator = helpSepStyle
	h.Styles.FullKey = helpKeyStyle
	h.Styles.FullDesc = helpDescStyle
	h.Styles.FullSeparator = helpSepStyle
	return &App{
		ctx:   ctx,
		ctrl:  ctrl,
		sink:  sink,
		keys:  NewKeyRegistry(),
		help:  h,
		opts:  opts,
		input: ti,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.open(), a.sink.wait(a.ctx))
}

func (a *App) open() tea.Cmd {
	module := a.opts.Module
	return func() tea.Msg {
		if err := a.ctrl.Open(a.ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		if module != "" {
			return actionDoneMsg{err: a.ctrl.SetModuleFilter(module)}
		}
		return actionDoneMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		return a, nil
	case frameMsg:
		a.frame = view.Frame(m)
		a.loaded = true
		a.clampCursor()
		return a, a.sink.wait(a.ctx)
	case actionDoneMsg:
		a.setStatus(m.status, m.err)
		return a, nil
	case noteReadyMsg:
		c := exec.Command(a.opts.Editor, m.path)
		return a, tea.ExecProcess(c, func(err error) tea.Msg { return editorClosedMsg{err} })
	case editorClosedMsg:
		if m.err != nil {
			a.setStatus("", fmt.Errorf("editor: %w", m.err))
		}
		return a, nil
	case tea.KeyMsg:
		switch {
		case a.inputOn:
			return a.handleInputKey(m)
		case a.picker != nil:
			return a.handlePickerKey(m)
		}
		return a.handleBoardKey(m)
	}
	if a.inputOn {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) setStatus(status string, err error) {
	switch {
	case errors.Is(err, view.ErrSyncInProgress):
		a.status, a.isErr = "Sync already running", false
	case err != nil:
		a.status, a.isErr = err.Error(), true
	case status != "":
		a.status, a.isErr = status, false
	}
}

func (a *App) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := a.keys.Lookup(msg.String(), scopeBoard)
	if b == nil {
		return a, nil
	}
	switch b.Action {
	case actionQuit:
		a.ctrl.Close()
		return a, tea.Quit
	case actionColumnLeft:
		if a.col > 0 {
			a.col--
			a.card = 0
		}
	case actionColumnRight:
		if a.col < len(a.frame.Columns)-1 {
			a.col++
			a.card = 0
		}
	case actionCardUp:
		if a.card > 0 {
			a.card--
		}
	case actionCardDown:
		if col, ok := a.currentColumn(); ok && a.card < len(col.Cards)-1 {
			a.card++
		}
	case actionSync, actionForceSync:
		if a.frame.Syncing {
			a.setStatus("", view.ErrSyncInProgress)
			return a, nil
		}
		force := b.Action == actionForceSync
		a.status, a.isErr = "Syncing…", false
		return a, a.run(func(ctx context.Context) (string, error) {
			return "Synced", a.ctrl.Sync(ctx, force)
		})
	case actionPickProject:
		a.picker = newPicker(pickerProject, "Project", a.frame.ProjectOptions, a.frame.ProjectValue)
	case actionPickModule:
		a.picker = newPicker(pickerModule, "Filter module", a.frame.ModuleOptions, a.frame.ModuleFilter)
	case actionClearModule:
		return a, a.setModule("")
	case actionNewItem:
		if a.frame.ProjectID == "" {
			a.setStatus("Select a project first", nil)
			return a, nil
		}
		a.inputOn = true
		a.input.SetValue("")
		return a, a.input.Focus()
	case actionOpenNote:
		card, ok := a.currentCard()
		if !ok {
			return a, nil
		}
		return a, func() tea.Msg {
			path, err := a.ctrl.OpenNote(a.ctx, card.ID)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return noteReadyMsg{path: path}
		}
	case actionToggleHelp:
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
	}
	return a, nil
}

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res := a.picker.handleKey(msg.String())
	if !res.done {
		return a, nil
	}
	kind := a.picker.kind
	a.picker = nil
	if res.cancelled {
		return a, nil
	}
	switch kind {
	case pickerProject:
		if res.choice.Value == "" {
			return a, nil
		}
		id := res.choice.Value
		a.col, a.card = 0, 0
		return a, a.run(func(ctx context.Context) (string, error) {
			return "Synced " + res.choice.Label, a.ctrl.SelectProject(ctx, id)
		})
	case pickerModule:
		return a, a.setModule(res.choice.Value)
	}
	return a, nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b := a.keys.Lookup(msg.String(), scopeInput); b != nil {
		switch b.Action {
		case actionCancel:
			a.inputOn = false
			a.input.Blur()
			return a, nil
		case actionConfirm:
			name := strings.TrimSpace(a.input.Value())
			a.inputOn = false
			a.input.Blur()
			if name == "" {
				return a, nil
			}
			stateID := ""
			if col, ok := a.currentColumn(); ok && col.StateKey != board.UnspecifiedKey {
				stateID = col.StateKey
			}
			a.status, a.isErr = "Creating…", false
			return a, a.run(func(ctx context.Context) (string, error) {
				return "Created " + name, a.ctrl.CreateWorkItem(ctx, name, stateID)
			})
		}
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) setModule(id string) tea.Cmd {
	a.col, a.card = 0, 0
	return func() tea.Msg {
		return actionDoneMsg{err: a.ctrl.SetModuleFilter(id)}
	}
}

// run executes a controller action off the UI loop.
func (a *App) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		status, err := fn(ctx)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: status}
	}
}

func (a *App) currentColumn() (view.ColumnView, bool) {
	if a.col < 0 || a.col >= len(a.frame.Columns) {
		return view.ColumnView{}, false
	}
	return a.frame.Columns[a.col], true
}

func (a *App) currentCard() (view.Card, bool) {
	col, ok := a.currentColumn()
	if !ok || a.card < 0 || a.card >= len(col.Cards) {
		return view.Card{}, false
	}
	return col.Cards[a.card], true
}

func (a *App) clampCursor() {
	if a.col >= len(a.frame.Columns) {
		a.col = max(len(a.frame.Columns)-1, 0)
	}
	col, ok := a.currentColumn()
	if !ok {
		a.card = 0
		return
	}
	if a.card >= len(col.Cards) {
		a.card = max(len(col.Cards)-1, 0)
	}
}
