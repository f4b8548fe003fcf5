package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/config"
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/export"
	"github.com/vanderheijden86/laneboard/pkg/hooks"
	"github.com/vanderheijden86/laneboard/pkg/metrics"
	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/replay"
	"github.com/vanderheijden86/laneboard/pkg/ui"
	"github.com/vanderheijden86/laneboard/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath  string
	initConfig  bool
	preload     string
	follow      string
	replay      string
	skipInvalid bool
	export      string
	noHooks     bool
	print       bool
	noMouse     bool
	metrics     bool
	debug       bool
	version     bool
	help        bool
	cpuProfile  string
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, options, error) {
	var o options
	fs := flag.NewFlagSet("laneboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/laneboard/config.yaml)")
	fs.BoolVar(&o.initConfig, "init-config", false, "Write the default config file and exit")
	fs.StringVar(&o.preload, "preload", "", "Apply a JSONL action script before starting")
	fs.StringVar(&o.follow, "follow", "", "Apply actions appended to a JSONL script while the board is open")
	fs.StringVar(&o.replay, "replay", "", "Apply a JSONL action script headlessly and exit")
	fs.BoolVar(&o.skipInvalid, "skip-invalid", false, "Skip script lines that fail to decode instead of stopping")
	fs.StringVar(&o.export, "export", "", "Comma-separated outputs written at exit (.json, .md, .sqlite, .svg, .png)")
	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip pre-export and post-export hooks from hooks.yaml")
	fs.BoolVar(&o.print, "print", false, "Print the final board as Markdown")
	fs.BoolVar(&o.noMouse, "no-mouse", false, "Disable mouse drag and drop")
	fs.BoolVar(&o.metrics, "metrics", false, "Print timing metrics at exit")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	err := fs.Parse(args)
	return fs, o, err
}

func run(args []string, stdout, stderr io.Writer) int {
	fs, o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: laneboard [options]")
		fmt.Fprintln(stdout, "\nA three-lane kanban board for the terminal.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if o.version {
		fmt.Fprintf(stdout, "laneboard %s\n", version.String())
		return 0
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfgPath := o.configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	if o.initConfig {
		if cfgPath == "" {
			fmt.Fprintln(stderr, "Error: no config directory; pass --config")
			return 1
		}
		if err := config.SaveTo(config.DefaultConfig(), cfgPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote %s\n", cfgPath)
		return 0
	}

	cfg := config.DefaultConfig()
	if cfgPath != "" {
		if cfg, err = config.LoadFrom(cfgPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if o.metrics {
		metrics.SetEnabled(true)
	}

	headless := o.replay != ""
	logLevel := cfg.Log.Level
	if o.debug {
		logLevel = "debug"
	}
	if headless {
		debug.Configure(stderr, logLevel)
	} else {
		closeLog := configureFileLog(cfg.LogPath(), logLevel)
		defer closeLog()
	}

	exportPaths := export.SplitPaths(o.export)
	var exportFormats []string
	for _, p := range exportPaths {
		format, err := export.FormatFromPath(p)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		exportFormats = append(exportFormats, string(format))
	}

	reducer, err := cfg.Reducer()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	store := board.NewStore(model.BoardState{}, reducer)
	if n := store.AddTasks(cfg.Board.Seed...); n > 0 {
		debug.Info("seeded %d cards from config", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replayOpts := replay.Options{SkipInvalid: o.skipInvalid}
	if o.preload != "" {
		rep, err := replayFile(ctx, store, o.preload, replayOpts)
		if err != nil {
			fmt.Fprintf(stderr, "Error: preload: %v\n", err)
			return 1
		}
		debug.Info("preloaded %s: %s", o.preload, rep)
	}

	if headless {
		rep, err := replayFile(ctx, store, o.replay, replayOpts)
		if err != nil {
			fmt.Fprintf(stderr, "Error: replay: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "replayed %s: %s\n", o.replay, rep)
	} else {
		opts := ui.OptionsFromConfig(cfg)
		opts.Mouse = opts.Mouse && !o.noMouse
		if o.follow != "" {
			followCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			ch, err := ui.FollowScript(followCtx, o.follow)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			opts.Script = ch
		}
		if err := runTUIProgram(ui.NewModel(store, opts), opts.Mouse); err != nil {
			fmt.Fprintf(stderr, "Error running laneboard: %v\n", err)
			return 1
		}
	}

	final := store.State()
	code := 0
	if len(exportPaths) > 0 {
		ec := hooks.ExportContext{
			Paths:     exportPaths,
			Formats:   exportFormats,
			CardCount: final.TotalCards(),
			Timestamp: time.Now(),
		}
		if err := exportWithHooks(filepath.Dir(cfgPath), ec, final, o.noHooks || cfgPath == ""); err != nil {
			fmt.Fprintf(stderr, "Error: export: %v\n", err)
			code = 1
		}
	}
	if o.print {
		if err := export.RenderTerminal(stdout, final, cfg.UI.MarkdownStyle, terminalWidth(stdout)); err != nil {
			fmt.Fprintf(stderr, "Error: print: %v\n", err)
			code = 1
		}
	}
	if o.metrics {
		if err := metrics.WriteSummary(stderr); err != nil {
			debug.Error(err, "write metrics")
		}
	}
	return code
}

// exportWithHooks writes the exports between the pre-export and post-export
// hooks found in dir. A failing pre-export hook cancels the export.
func exportWithHooks(dir string, ec hooks.ExportContext, s model.BoardState, noHooks bool) error {
	executor, err := hooks.RunHooks(dir, ec, noHooks)
	if err != nil {
		return err
	}
	if executor != nil {
		if err := executor.RunPreExport(); err != nil {
			debug.Warn("%s", executor.Summary())
			return err
		}
	}
	if err := export.Write(context.Background(), s, ec.Paths...); err != nil {
		return err
	}
	if executor == nil {
		return nil
	}
	err = executor.RunPostExport()
	debug.Info("%s", executor.Summary())
	return err
}

func replayFile(ctx context.Context, store *board.Store, path string, opts replay.Options) (replay.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return replay.Report{}, err
	}
	defer f.Close()
	return replay.Run(ctx, store, f, opts)
}

// configureFileLog sends log output to path so it never draws over the
// board. Without a usable path logging is discarded.
func configureFileLog(path, level string) func() {
	if path == "" {
		debug.Configure(io.Discard, level)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		debug.Configure(io.Discard, level)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		debug.Configure(io.Discard, level)
		return func() {}
	}
	debug.Configure(f, level)
	return func() {
		debug.Configure(io.Discard, "")
		_ = f.Close()
	}
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	done := make(chan struct{})
	defer close(done)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go shutdownOn[os.Signal](p, done, sigCh, 5*time.Second)

	if d := autocloseAfter(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		go shutdownOn(p, done, timer.C, 2*time.Second)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// shutdownOn asks p to quit at the first value on trigger and kills it if it
// is still running after grace or a second trigger.
func shutdownOn[T any](p *tea.Program, done <-chan struct{}, trigger <-chan T, grace time.Duration) {
	select {
	case <-done:
		return
	case <-trigger:
	}
	p.Quit()

	select {
	case <-done:
		return
	case <-trigger:
	case <-time.After(grace):
	}
	p.Kill()
}

// autocloseAfter reads LANEBOARD_TUI_AUTOCLOSE_MS, used by automated runs to
// quit the TUI on a timer.
func autocloseAfter() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("LANEBOARD_TUI_AUTOCLOSE_MS"))
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
