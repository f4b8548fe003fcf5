package board

import (
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/metrics"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Store owns the board. It is the only place a BoardState is replaced, and
// Dispatch is its only mutation entry point. A Store has exactly one writer
// (the UI event loop or the replay driver) and holds no lock.
type Store struct {
	reducer   Reducer
	state     model.BoardState
	revision  uint64
	listeners []func(model.BoardState)
}

// NewStore creates a Store holding initial.
func NewStore(initial model.BoardState, r Reducer) *Store {
	if r.IDs == nil {
		r.IDs = NewCounterGenerator()
	}
	return &Store{reducer: r, state: initial}
}

// State returns the current board. The value is shared; callers must treat
// its lanes as read-only.
func (s *Store) State() model.BoardState {
	return s.state
}

// Revision increases by one every time Dispatch changes the board.
func (s *Store) Revision() uint64 {
	return s.revision
}

// Subscribe registers fn to be called with the new board after each
// dispatch that changed it.
func (s *Store) Subscribe(fn func(model.BoardState)) {
	s.listeners = append(s.listeners, fn)
}

// Dispatch applies a and reports whether the board changed.
func (s *Store) Dispatch(a Action) bool {
	if a == nil {
		return false
	}
	kind := string(a.Kind())
	defer metrics.Timer(metrics.ForAction(kind))()

	next := s.reducer.Reduce(s.state, a)
	changed := !next.Equal(s.state)
	s.state = next
	if !changed {
		debug.Event("dispatch no-op", debug.Fields{"kind": kind})
		return false
	}

	s.revision++
	debug.Event("dispatch", debug.Fields{
		"kind":     kind,
		"revision": s.revision,
		"cards":    next.TotalCards(),
	})
	for _, fn := range s.listeners {
		fn(next)
	}
	return true
}

// AddTasks dispatches ADD_TASK for every text that is non-empty after
// trimming and returns how many cards were added.
func (s *Store) AddTasks(texts ...string) int {
	added := 0
	for _, raw := range texts {
		text, ok := NormalizeText(raw)
		if !ok {
			continue
		}
		if s.Dispatch(AddTask{Text: text}) {
			added++
		}
	}
	return added
}
