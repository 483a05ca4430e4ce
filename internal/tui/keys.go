package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
}

// KeyRegistry maps key names to actions per scope. Help lists bindings in registration
// order.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeBoard  = "board"
	scopePicker = "picker"
	scopeInput  = "input"
)

const (
	actionQuit        Action = "quit"
	actionColumnLeft  Action = "column_left"
	actionColumnRight Action = "column_right"
	actionCardUp      Action = "card_up"
	actionCardDown    Action = "card_down"
	actionSync        Action = "sync"
	actionForceSync   Action = "force_sync"
	actionPickProject Action = "pick_project"
	actionPickModule  Action = "pick_module"
	actionClearModule Action = "clear_module"
	actionNewItem     Action = "new_item"
	actionOpenNote    Action = "open_note"
	actionNavigate    Action = "navigate"
	actionSelect      Action = "select"
	actionCancel      Action = "cancel"
	actionConfirm     Action = "confirm"
	actionToggleHelp  Action = "toggle_help"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}
	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(scope, Binding{Action: action, Keys: keys, Help: help})
	}

	reg(scopeBoard, actionColumnLeft, []string{"h", "left"}, "column")
	reg(scopeBoard, actionColumnRight, []string{"l", "right"}, "column")
	reg(scopeBoard, actionCardUp, []string{"k", "up"}, "card")
	reg(scopeBoard, actionCardDown, []string{"j", "down"}, "card")
	reg(scopeBoard, actionSync, []string{"s"}, "sync")
	reg(scopeBoard, actionForceSync, []string{"S"}, "force sync")
	reg(scopeBoard, actionPickProject, []string{"p"}, "project")
	reg(scopeBoard, actionPickModule, []string{"m"}, "module")
	reg(scopeBoard, actionClearModule, []string{"M"}, "all modules")
	reg(scopeBoard, actionNewItem, []string{"n"}, "new")
	reg(scopeBoard, actionOpenNote, []string{"enter", "o"}, "note")
	reg(scopeBoard, actionToggleHelp, []string{"?"}, "help")
	reg(scopeBoard, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopePicker, actionNavigate, []string{"j/k", "j", "k", "up", "down"}, "navigate")
	reg(scopePicker, actionSelect, []string{"enter"}, "choose")
	reg(scopePicker, actionCancel, []string{"esc"}, "cancel")

	reg(scopeInput, actionConfirm, []string{"enter"}, "create")
	reg(scopeInput, actionCancel, []string{"esc"}, "cancel")
	return r
}

// Register adds a binding to scope. A key already bound in the scope is rebound.
func (r *KeyRegistry) Register(scope string, b Binding) {
	bb := b
	r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &bb)
	idx := r.indexByScope[scope]
	if idx == nil {
		idx = make(map[string]*Binding)
		r.indexByScope[scope] = idx
	}
	for _, k := range bb.Keys {
		idx[normalizeKeyName(k)] = &bb
	}
}

// Lookup returns the binding for keyName in scope, or nil.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	idx := r.indexByScope[scope]
	if idx == nil {
		return nil
	}
	return idx[normalizeKeyName(keyName)]
}

// HelpBindings returns bubbles key bindings for the help footer.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.bindingsByScope[scope]
	out := make([]key.Binding, 0, len(items))
	seen := make(map[Action]bool)
	for _, b := range items {
		if len(b.Keys) == 0 || seen[b.Action] {
			continue
		}
		seen[b.Action] = true
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	if len(k) == 1 {
		return k
	}
	return strings.ToLower(k)
}
