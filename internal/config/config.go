package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Plane    PlaneConfig    `mapstructure:"plane"`
	Database DatabaseConfig `mapstructure:"database"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// PlaneConfig holds workspace and API settings.
type PlaneConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Workspace         string        `mapstructure:"workspace"`
	APIKeyEnv         string        `mapstructure:"api_key_env"`
	APIKey            string        `mapstructure:"api_key"`
	DefaultProjectID  string        `mapstructure:"default_project_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PageSize          int           `mapstructure:"page_size"`
	ModuleConcurrency int           `mapstructure:"module_concurrency"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// NotesConfig holds where work-item notes are written.
type NotesConfig struct {
	Dir string `mapstructure:"dir"`
}

// SyncConfig holds sync throttling and cache watching.
type SyncConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
	Watch       bool          `mapstructure:"watch"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ServerConfig holds the JSON board listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func home() string { return os.Getenv("HOME") }

func setDefaults(v *viper.Viper) {
	v.SetDefault("plane.base_url", "https://api.plane.so")
	v.SetDefault("plane.workspace", "")
	v.SetDefault("plane.api_key_env", "PLANE_API_KEY")
	v.SetDefault("plane.api_key", "")
	v.SetDefault("plane.default_project_id", "")
	v.SetDefault("plane.timeout", 10*time.Second)
	v.SetDefault("plane.page_size", 100)
	v.SetDefault("plane.module_concurrency", 4)
	v.SetDefault("database.path", filepath.Join(home(), ".local", "share", "planeboard", "planeboard.db"))
	v.SetDefault("notes.dir", filepath.Join(home(), "Documents", "plane"))
	v.SetDefault("sync.min_interval", time.Duration(0))
	v.SetDefault("sync.watch", true)
	v.SetDefault("log.path", filepath.Join(home(), ".local", "state", "planeboard", "planeboard.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
}

// Path returns the config file location. PLANEBOARD_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("PLANEBOARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home(), ".config", "planeboard", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix PLANEBOARD_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("PLANEBOARD_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home(), ".config", "planeboard"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PLANEBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Database.Path = ExpandHome(c.Database.Path)
	c.Notes.Dir = ExpandHome(c.Notes.Dir)
	c.Log.Path = ExpandHome(c.Log.Path)
	c.Plane.BaseURL = strings.TrimRight(c.Plane.BaseURL, "/")
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; prefer env vars or the token
// store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("plane.base_url", cfg.Plane.BaseURL)
	v.Set("plane.workspace", cfg.Plane.Workspace)
	v.Set("plane.api_key_env", cfg.Plane.APIKeyEnv)
	v.Set("plane.api_key", cfg.Plane.APIKey)
	v.Set("plane.default_project_id", cfg.Plane.DefaultProjectID)
	v.Set("plane.timeout", cfg.Plane.Timeout.String())
	v.Set("plane.page_size", cfg.Plane.PageSize)
	v.Set("plane.module_concurrency", cfg.Plane.ModuleConcurrency)
	v.Set("database.path", cfg.Database.Path)
	v.Set("notes.dir", cfg.Notes.Dir)
	v.Set("sync.min_interval", cfg.Sync.MinInterval.String())
	v.Set("sync.watch", cfg.Sync.Watch)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("server.addr", cfg.Server.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with $HOME.
func ExpandHome(p string) string {
	if p == "~" {
		return home()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home(), p[2:])
	}
	return p
}
