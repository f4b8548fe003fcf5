// Package replay drives a Store from JSONL action scripts without a UI.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/metrics"
	"github.com/vanderheijden86/laneboard/pkg/wire"
)

// Options tune Run.
type Options struct {
	// SkipInvalid logs and counts undecodable lines instead of stopping.
	SkipInvalid bool
}

// Report summarises a replay.
type Report struct {
	Applied int // actions that changed the board
	NoOps   int // actions the reducer ignored
	Unknown int // actions of a type this build does not know
	Invalid int // lines that failed to decode (SkipInvalid only)
	ByKind  map[board.Kind]int
}

func (r *Report) record(a board.Action, changed bool) {
	if r.ByKind == nil {
		r.ByKind = make(map[board.Kind]int)
	}
	r.ByKind[a.Kind()]++
	if _, ok := a.(board.Unknown); ok {
		r.Unknown++
	}
	if changed {
		r.Applied++
	} else {
		r.NoOps++
	}
}

// Total is the number of decoded actions.
func (r Report) Total() int {
	return r.Applied + r.NoOps
}

// String renders a one-line summary with per-kind counts in a stable order.
func (r Report) String() string {
	kinds := make([]string, 0, len(r.ByKind))
	for k := range r.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, r.ByKind[board.Kind(k)]))
	}
	return fmt.Sprintf("%d actions (%d applied, %d no-op, %d unknown, %d invalid) [%s]",
		r.Total(), r.Applied, r.NoOps, r.Unknown, r.Invalid, strings.Join(parts, " "))
}

// Run decodes r line by line and dispatches every action to store. It stops
// at ctx cancellation or, unless opts.SkipInvalid, at the first bad line.
func Run(ctx context.Context, store *board.Store, r io.Reader, opts Options) (Report, error) {
	var rep Report
	dec := wire.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		stop := metrics.Timer(metrics.ScriptDecode)
		sl, err := dec.Next()
		stop()

		if errors.Is(err, io.EOF) {
			debug.Event("replay finished", debug.Fields{"applied": rep.Applied, "noops": rep.NoOps})
			return rep, nil
		}
		var lerr *wire.LineError
		if errors.As(err, &lerr) && opts.SkipInvalid {
			rep.Invalid++
			debug.Warn("replay: skipping %v", lerr)
			continue
		}
		if err != nil {
			return rep, err
		}

		rep.record(sl.Action, store.Dispatch(sl.Action))
	}
}

// Apply dispatches already-decoded actions and reports what happened.
func Apply(store *board.Store, actions []board.Action) Report {
	var rep Report
	for _, a := range actions {
		if a == nil {
			continue
		}
		rep.record(a, store.Dispatch(a))
	}
	return rep
}
