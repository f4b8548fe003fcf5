// Package hooks runs user commands around board exports. Hooks are
// configured in hooks.yaml next to config.yaml and run before the export
// (pre-export) and after it has been written (post-export).
package hooks

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is when a hook runs.
type Phase string

const (
	// PreExport runs before any output is written. Failure cancels the export.
	PreExport Phase = "pre-export"
	// PostExport runs after the outputs are written. Failure is reported but
	// the outputs stay.
	PostExport Phase = "post-export"
)

// Hook is a single configured command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout time.Duration     `yaml:"-"` // decoded by UnmarshalYAML
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"` // "fail" or "continue"
}

// Config holds the hooks of both phases.
type Config struct {
	Hooks ByPhase `yaml:"hooks"`
}

// ByPhase groups hooks by phase.
type ByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty"`
}

// ExportContext describes the export and reaches hooks as environment
// variables.
type ExportContext struct {
	Paths     []string
	Formats   []string
	CardCount int
	Timestamp time.Time
}

// ToEnv renders the context as LANEBOARD_* variables.
func (c ExportContext) ToEnv() []string {
	return []string{
		"LANEBOARD_EXPORT_PATHS=" + strings.Join(c.Paths, ","),
		"LANEBOARD_EXPORT_FORMATS=" + strings.Join(c.Formats, ","),
		fmt.Sprintf("LANEBOARD_CARD_COUNT=%d", c.CardCount),
		"LANEBOARD_TIMESTAMP=" + c.Timestamp.UTC().Format(time.RFC3339),
	}
}

// DefaultTimeout applies to hooks without a timeout.
const DefaultTimeout = 30 * time.Second

// FileName is the hooks file looked up in the config directory.
const FileName = "hooks.yaml"

// Empty reports whether c configures no hook at all.
func (c *Config) Empty() bool {
	return c == nil || len(c.Hooks.PreExport)+len(c.Hooks.PostExport) == 0
}

// ForPhase returns the hooks of phase.
func (c *Config) ForPhase(phase Phase) []Hook {
	if c == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	}
	return nil
}

// Load reads dir/hooks.yaml. A missing file yields an empty Config. The
// returned warnings name hooks that were skipped.
func Load(dir string) (*Config, []string, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading hooks config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var warnings []string
	cfg.Hooks.PreExport = withDefaults(cfg.Hooks.PreExport, PreExport, &warnings)
	cfg.Hooks.PostExport = withDefaults(cfg.Hooks.PostExport, PostExport, &warnings)
	return cfg, warnings, nil
}

// withDefaults fills timeout, on_error and name, and drops hooks without a
// command.
func withDefaults(in []Hook, phase Phase, warnings *[]string) []Hook {
	onError := "continue"
	if phase == PreExport {
		onError = "fail"
	}
	kept := in[:0]
	for i, h := range in {
		if strings.TrimSpace(h.Command) == "" {
			*warnings = append(*warnings, fmt.Sprintf("%s hook #%d skipped: no command", phase, i+1))
			continue
		}
		h.Timeout = cmp.Or(h.Timeout, DefaultTimeout)
		h.OnError = cmp.Or(h.OnError, onError)
		h.Name = cmp.Or(h.Name, fmt.Sprintf("%s-%d", phase, i+1))
		kept = append(kept, h)
	}
	return kept
}

// UnmarshalYAML accepts timeouts as durations ("5s") or bare seconds ("30").
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type plain Hook
	var raw struct {
		plain   `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*h = Hook(raw.plain)
	if raw.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	secs, err := strconv.ParseFloat(raw.Timeout, 64)
	if err != nil || secs < 0 {
		return fmt.Errorf("hook %q: invalid timeout %q", raw.Name, raw.Timeout)
	}
	h.Timeout = time.Duration(secs * float64(time.Second))
	return nil
}
