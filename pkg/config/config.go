// Package config loads laneboard settings.
//
// Paths follow the XDG Base Directory specification:
//   - Config: ~/.config/laneboard/config.yaml
//   - State:  ~/.local/state/laneboard/ (log file)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/laneboard/pkg/board"
)

const appName = "laneboard"

// BoardConfig controls the state machine.
type BoardConfig struct {
	IDStrategy string   `yaml:"id_strategy,omitempty"` // counter, uuid
	MovePolicy string   `yaml:"move_policy,omitempty"` // existing, trust
	Seed       []string `yaml:"seed,omitempty"`        // cards added to todo at startup
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Mouse          *bool  `yaml:"mouse,omitempty"`
	ConfirmDelete  *bool  `yaml:"confirm_delete,omitempty"`
	MinColumnWidth int    `yaml:"min_column_width,omitempty"`
	MarkdownStyle  string `yaml:"markdown_style,omitempty"` // glamour standard style; empty = auto
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Board BoardConfig `yaml:"board,omitempty"`
	UI    UIConfig    `yaml:"ui,omitempty"`
	Log   LogConfig   `yaml:"log,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Board: BoardConfig{
			IDStrategy: "counter",
			MovePolicy: "existing",
		},
		UI: UIConfig{
			Mouse:          boolPtr(true),
			ConfirmDelete:  boolPtr(true),
			MinColumnWidth: 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// MouseEnabled reports ui.mouse, defaulting to true.
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

// ConfirmDeletes reports ui.confirm_delete, defaulting to true.
func (c Config) ConfirmDeletes() bool {
	return c.UI.ConfirmDelete == nil || *c.UI.ConfirmDelete
}

// LogPath returns log.file or <state dir>/laneboard.log.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName+".log")
}

// Reducer builds the reducer the board section describes.
func (c Config) Reducer() (board.Reducer, error) {
	ids, err := board.NewIDGenerator(c.Board.IDStrategy)
	if err != nil {
		return board.Reducer{}, err
	}
	policy, err := board.ParseMovePolicy(c.Board.MovePolicy)
	if err != nil {
		return board.Reducer{}, err
	}
	return board.NewReducer(ids, policy), nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Reducer(); err != nil {
		errs = append(errs, fmt.Errorf("board: %w", err))
	}
	if c.UI.MinColumnWidth < 0 {
		errs = append(errs, fmt.Errorf("ui.min_column_width must not be negative (got %d)", c.UI.MinColumnWidth))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not a log level", c.Log.Level))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads config.yaml from the XDG config directory.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path on top of the defaults. A missing file
// yields DefaultConfig.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo writes cfg to path, creating the directory.
func SaveTo(cfg Config, path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
