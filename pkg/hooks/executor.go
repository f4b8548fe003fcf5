package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/laneboard/pkg/debug"
)

// maxStderrInSummary bounds the stderr excerpt shown per failed hook, in
// terminal cells.
const maxStderrInSummary = 200

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of a Config for one export.
type Executor struct {
	config  *Config
	export  ExportContext
	results []Result
}

// NewExecutor prepares cfg's hooks for the export described by ec.
func NewExecutor(cfg *Config, ec ExportContext) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Executor{config: cfg, export: ec}
}

// RunPreExport runs pre-export hooks in order and stops at the first failure
// of a hook whose on_error is "fail".
func (e *Executor) RunPreExport() error {
	for _, h := range e.config.Hooks.PreExport {
		r := e.run(h, PreExport)
		if !r.Success && h.OnError != "continue" {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and joins the failures of hooks
// whose on_error is "fail".
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, h := range e.config.Hooks.PostExport {
		r := e.run(h, PostExport)
		if !r.Success && h.OnError == "fail" {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(h Hook, phase Phase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	env := append(os.Environ(), e.export.ToEnv()...)
	lookup := envLookup(env)
	for k, v := range h.Env {
		env = append(env, k+"="+os.Expand(v, lookup))
	}
	cmd.Env = env
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Error:    err,
	}
	if ctx.Err() == context.DeadlineExceeded {
		r.Success = false
		r.Error = fmt.Errorf("timed out after %v", timeout)
	}
	e.results = append(e.results, r)

	debug.Event("hook finished", debug.Fields{
		"hook": h.Name, "phase": string(phase), "ok": r.Success, "ms": r.Duration.Milliseconds(),
	})
	return r
}

// envLookup resolves ${VAR} against env (last entry wins), then the process.
func envLookup(env []string) func(string) string {
	vals := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vals[k] = v
		}
	}
	return func(name string) string {
		if v, ok := vals[name]; ok {
			return v
		}
		return os.Getenv(name)
	}
}

// Results returns every hook run so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary describes the runs in a few lines, with a short stderr excerpt per
// failure.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	ok, failed := 0, 0
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "\n  %s %s: %v", r.Phase, r.Hook.Name, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", runewidth.Truncate(r.Stderr, maxStderrInSummary, "..."))
		}
	}
	return fmt.Sprintf("hooks: %d succeeded, %d failed", ok, failed) + sb.String()
}

// RunHooks loads dir/hooks.yaml and returns an executor for it, or nil when
// hooks are disabled or none are configured.
func RunHooks(dir string, ec ExportContext, disabled bool) (*Executor, error) {
	if disabled || dir == "" {
		return nil, nil
	}
	cfg, warnings, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		debug.Warn("hooks: %s", w)
	}
	if cfg.Empty() {
		return nil, nil
	}
	return NewExecutor(cfg, ec), nil
}
