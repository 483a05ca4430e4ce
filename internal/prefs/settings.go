// Package prefs persists the small amount of user state the board keeps between runs.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

const settingsFile = "settings.json"

// Settings is the persisted state.
type Settings struct {
	SelectedProjectID string `json:"selectedProjectId,omitempty"`
}

// File reads and writes Settings as JSON.
type File struct {
	Fs   afero.Fs
	Path string

	mu sync.Mutex
}

// DefaultFile returns the settings file under the user's config directory.
func DefaultFile() (*File, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &File{Fs: afero.NewOsFs(), Path: filepath.Join(dir, "planeboard", settingsFile)}, nil
}

// Load returns the stored settings; a missing file yields zero settings.
func (f *File) Load() (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (Settings, error) {
	var s Settings
	data, err := afero.ReadFile(f.Fs, f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return s, nil
}

// Save replaces the stored settings.
func (f *File) Save(s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(s)
}

func (f *File) save(s Settings) error {
	if err := f.Fs.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := afero.WriteFile(f.Fs, tmp, data, 0o600); err != nil {
		return err
	}
	return f.Fs.Rename(tmp, f.Path)
}

// SaveSelectedProject records the selected project.
func (f *File) SaveSelectedProject(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.load()
	if err != nil {
		return err
	}
	s.SelectedProjectID = id
	return f.save(s)
}
