package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Arcodify/obsidian-plane-plugin/internal/board"
	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

var unsafeName = regexp.MustCompile(`[\\/:*?"<>|#^\[\]]+`)

// maxNameRunes caps the title part of a note file name.
const maxNameRunes = 80

// NoteService creates one markdown note per work item.
type NoteService struct {
	Fs  afero.Fs
	Dir string
	// Modules resolves module ids to names for the frontmatter; may be nil.
	Modules func(projectID string) []repository.Module
}

type noteFrontmatter struct {
	PlaneID    string `yaml:"plane_id"`
	Project    string `yaml:"plane_project"`
	Identifier string `yaml:"plane_identifier,omitempty"`
	State      string `yaml:"plane_state,omitempty"`
	Priority   string `yaml:"plane_priority,omitempty"`
	Module     string `yaml:"plane_module,omitempty"`
}

// NotePath returns where a new note for item is created. EnsureNote prefers an existing
// note for the same identifier, so renamed items keep their note.
func (s *NoteService) NotePath(item repository.WorkItem) string {
	label := noteLabel(item)
	name := strings.TrimSpace(unsafeName.ReplaceAllString(item.Name, " "))
	name = strings.Join(strings.Fields(name), " ")
	if r := []rune(name); len(r) > maxNameRunes {
		name = strings.TrimSpace(string(r[:maxNameRunes]))
	}
	file := label
	if name != "" {
		file += " " + name
	}
	return filepath.Join(s.Dir, item.ProjectID, file+".md")
}

func noteLabel(item repository.WorkItem) string {
	if item.Identifier != nil && *item.Identifier != "" {
		return *item.Identifier
	}
	return item.ID
}

// existingNote finds a note already written for item's label in its project directory.
func (s *NoteService) existingNote(item repository.WorkItem) (string, bool, error) {
	dir := filepath.Join(s.Dir, item.ProjectID)
	entries, err := afero.ReadDir(s.Fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	label := noteLabel(item)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if name == label+".md" || strings.HasPrefix(name, label+" ") {
			return filepath.Join(dir, name), true, nil
		}
	}
	return "", false, nil
}

// EnsureNote returns the path of the item's note, creating it with a frontmatter stub if
// it does not exist yet. Existing notes are never rewritten.
func (s *NoteService) EnsureNote(ctx context.Context, item repository.WorkItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	found, ok, err := s.existingNote(item)
	if err != nil {
		return "", fmt.Errorf("scan notes: %w", err)
	}
	if ok {
		return found, nil
	}
	path := s.NotePath(item)
	if err := s.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create notes dir: %w", err)
	}

	fm := noteFrontmatter{PlaneID: item.ID, Project: item.ProjectID}
	if item.Identifier != nil {
		fm.Identifier = *item.Identifier
	}
	if key := board.ResolveStateKey(item); key != board.UnspecifiedKey {
		fm.State = key
	}
	if item.Priority != nil {
		fm.Priority = *item.Priority
	}
	if id, ok := board.ResolveModuleID(item); ok {
		fm.Module = id
		if s.Modules != nil {
			fm.Module = board.ModuleName(s.Modules(item.ProjectID), id)
		}
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n# ")
	buf.WriteString(item.Name)
	buf.WriteString("\n")
	if err := afero.WriteFile(s.Fs, path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}
	return path, nil
}
