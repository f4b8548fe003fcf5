// Package watcher notifies when a followed action script changes on disk.
// It prefers fsnotify and falls back to stat polling when fsnotify cannot
// watch the directory or polling is forced.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/laneboard/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

type settings struct {
	debounce  time.Duration
	interval  time.Duration
	onChange  func()
	onError   func(error)
	forcePoll bool
}

// Option configures a Watcher.
type Option func(*settings)

// WithDebounceDuration sets how long the file must stay quiet before a
// change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(s *settings) { s.debounce = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// WithOnChange sets a callback run on the debouncer goroutine after each
// coalesced change.
func WithOnChange(fn func()) Option {
	return func(s *settings) { s.onChange = fn }
}

func WithOnError(fn func(error)) Option {
	return func(s *settings) { s.onError = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(s *settings) { s.forcePoll = force }
}

// fileState is what polling compares between ticks.
type fileState struct {
	mtime time.Time
	size  int64
}

func (f fileState) exists() bool { return !f.mtime.IsZero() }

// Watcher watches one file.
type Watcher struct {
	path string
	cfg  settings
	bump *Debouncer
	out  chan struct{}

	mu      sync.RWMutex
	running context.CancelFunc
	notify  *fsnotify.Watcher
	polling bool
	last    fileState
}

// New creates a watcher for path. Nothing happens until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg := settings{
		debounce: DefaultDebounceDuration,
		interval: DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.interval <= 0 {
		cfg.interval = DefaultPollInterval
	}
	return &Watcher{
		path: abs,
		cfg:  cfg,
		bump: NewDebouncer(cfg.debounce),
		out:  make(chan struct{}, 1),
	}, nil
}

// Start begins watching. The watcher stops when ctx is done or Stop is
// called, whichever comes first. A file that does not exist yet is fine;
// its creation counts as a change.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running != nil {
		return ErrAlreadyStarted
	}
	st, err := statFile(w.path)
	if errors.Is(err, fs.ErrPermission) {
		return ErrPermission
	}
	w.last = st

	ctx, w.running = context.WithCancel(ctx)
	w.polling = w.cfg.forcePoll || envBool("LANEBOARD_FORCE_POLL")
	if !w.polling {
		if nw, err := watchDir(filepath.Dir(w.path)); err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.notify = nw
			go w.runNotify(ctx, nw)
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	debug.Event("watcher started", debug.Fields{"path": w.path, "polling": w.polling})
	return nil
}

// watchDir watches the parent directory so atomic renames of the file are
// seen.
func watchDir(dir string) (*fsnotify.Watcher, error) {
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := nw.Add(dir); err != nil {
		nw.Close()
		return nil, err
	}
	return nw, nil
}

// Stop stops watching. Changed stays open so a blocked reader is not woken
// by a close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running == nil {
		return
	}
	w.running()
	w.running = nil
	if w.notify != nil {
		w.notify.Close()
		w.notify = nil
	}
	w.bump.Cancel()
}

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running != nil
}

// Changed receives once per coalesced change. At most one notification is
// buffered.
func (w *Watcher) Changed() <-chan struct{} { return w.out }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) PollInterval() time.Duration { return w.cfg.interval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) runNotify(ctx context.Context, nw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-nw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.cfg.onError(ErrFileRemoved)
			} else if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.bump.Trigger(w.deliver)
			}
		case err, ok := <-nw.Errors:
			if !ok {
				return
			}
			w.cfg.onError(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	tick := time.NewTicker(w.cfg.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if w.poll() {
				w.bump.Trigger(w.deliver)
			}
		}
	}
}

// poll stats the file and reports whether it changed since the last look.
func (w *Watcher) poll() bool {
	st, err := statFile(w.path)
	switch {
	case errors.Is(err, fs.ErrPermission):
		w.cfg.onError(ErrPermission)
		return false
	case err != nil:
		w.cfg.onError(err)
		return false
	}

	w.mu.Lock()
	prev := w.last
	w.last = st
	w.mu.Unlock()

	if !st.exists() {
		if prev.exists() {
			w.cfg.onError(ErrFileRemoved)
		}
		return false
	}
	return st.mtime.After(prev.mtime) || st.size != prev.size
}

// statFile returns the zero fileState, without error, for a missing file.
func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}, nil
}

func (w *Watcher) deliver() {
	if !w.IsStarted() {
		return
	}
	w.cfg.onChange()
	select {
	case w.out <- struct{}{}:
	default:
	}
}
