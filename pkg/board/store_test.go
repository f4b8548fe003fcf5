package board_test

import (
	"testing"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/testutil"
)

func newStore(initial model.BoardState) *board.Store {
	return board.NewStore(initial, newReducer(board.MoveRequireExisting))
}

func TestStoreDispatchTracksRevision(t *testing.T) {
	st := newStore(model.BoardState{})

	if !st.Dispatch(board.AddTask{Text: "one"}) {
		t.Fatalf("add should change the board")
	}
	if st.Revision() != 1 {
		t.Fatalf("revision = %d, want 1", st.Revision())
	}
	if st.Dispatch(board.DeleteTask{CardID: "missing", From: model.LaneTodo}) {
		t.Fatalf("no-op delete reported a change")
	}
	if st.Revision() != 1 {
		t.Fatalf("no-op bumped revision to %d", st.Revision())
	}
	if st.Dispatch(nil) {
		t.Fatalf("nil action reported a change")
	}
	testutil.AssertLane(t, st.State(), model.LaneTodo, "n1")
}

func TestStoreSubscribersSeeChangesOnly(t *testing.T) {
	st := newStore(testutil.Board(testutil.Lane("A"), nil, nil))

	var seen []model.BoardState
	st.Subscribe(func(s model.BoardState) { seen = append(seen, s) })

	st.Dispatch(board.MoveCard{Card: testutil.Card("A"), From: model.LaneTodo, To: model.LaneDone})
	st.Dispatch(board.Unknown{Type: "ARCHIVE"})
	st.Dispatch(board.EditCard{CardID: "A", From: model.LaneDone, NewText: "Task A"})

	if len(seen) != 1 {
		t.Fatalf("listener called %d times, want 1", len(seen))
	}
	testutil.AssertLane(t, seen[0], model.LaneDone, "A")
}

func TestStoreAddTasksSkipsBlank(t *testing.T) {
	st := newStore(model.BoardState{})

	n := st.AddTasks("  first ", "", "   ", "second")
	if n != 2 {
		t.Fatalf("added %d, want 2", n)
	}
	s := st.State()
	testutil.AssertLane(t, s, model.LaneTodo, "n1", "n2")
	if s.Todo[0].Text != "first" {
		t.Fatalf("text not trimmed: %q", s.Todo[0].Text)
	}
}

func TestStoreDefaultsGenerator(t *testing.T) {
	st := board.NewStore(model.BoardState{}, board.Reducer{})
	st.AddTasks("a", "b")
	testutil.AssertInvariants(t, st.State())
	if st.State().Todo[0].ID == "" {
		t.Fatalf("expected generated id")
	}
}
