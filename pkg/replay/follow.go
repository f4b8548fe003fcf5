package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/watcher"
	"github.com/vanderheijden86/laneboard/pkg/wire"
)

// Follower reads a growing script. Each Poll returns the actions on lines
// completed since the previous Poll; a trailing partial line waits for its
// newline.
type Follower struct {
	path   string
	offset int64
	lines  int
}

// NewFollower follows path from its beginning.
func NewFollower(path string) *Follower {
	return &Follower{path: path}
}

// Path returns the followed file.
func (f *Follower) Path() string { return f.path }

// Offset returns the byte offset of the first unread line.
func (f *Follower) Offset() int64 { return f.offset }

// Poll reads new complete lines. A missing file yields nothing. A file that
// shrank is read again from the start. Bad lines are reported together in
// the returned error while the good ones are still returned.
func (f *Follower) Poll() ([]board.Action, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat script: %w", err)
	}
	if info.Size() < f.offset {
		debug.Log("replay: %s truncated, restarting from the top", f.path)
		f.offset, f.lines = 0, 0
	}
	if info.Size() == f.offset {
		return nil, nil
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek script: %w", err)
	}
	chunk, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	end := bytes.LastIndexByte(chunk, '\n')
	if end < 0 {
		return nil, nil
	}
	chunk = chunk[:end+1]

	base := f.lines
	var (
		actions []board.Action
		errs    []error
	)
	dec := wire.NewDecoder(bytes.NewReader(chunk))
	for {
		sl, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var lerr *wire.LineError
		if errors.As(err, &lerr) {
			errs = append(errs, &wire.LineError{Line: base + lerr.Line, Err: lerr.Err})
			continue
		}
		if err != nil {
			return actions, err
		}
		actions = append(actions, sl.Action)
	}
	f.offset += int64(len(chunk))
	f.lines += bytes.Count(chunk, []byte{'\n'})
	return actions, errors.Join(errs...)
}

// Follow polls f once immediately and then after every change reported by w
// until ctx is done, handing each non-empty batch to emit. w must not be
// started yet; Follow starts and stops it.
func Follow(ctx context.Context, f *Follower, w *watcher.Watcher, emit func([]board.Action)) error {
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}
	defer w.Stop()

	deliver := func() {
		actions, err := f.Poll()
		if err != nil {
			debug.Warn("replay: %s: %v", f.path, err)
		}
		if len(actions) > 0 {
			emit(actions)
		}
	}

	deliver()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			deliver()
		}
	}
}
