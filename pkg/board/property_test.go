package board_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/testutil"
)

func TestReducerKeepsIDsUniqueProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting)
		s := model.BoardState{}
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			a := testutil.ActionGen(s).Draw(t, "action")
			s = r.Reduce(s, a)
			if err := testutil.CheckInvariants(s); err != nil {
				t.Fatalf("after %#v: %v", a, err)
			}
		}
	})
}

func TestReducerDoesNotMutateInputProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting)
		s := model.BoardState{}
		for range rapid.IntRange(0, 15).Draw(t, "warmup") {
			s = r.Reduce(s, testutil.ActionGen(s).Draw(t, "warm"))
		}
		snapshot := s.Clone()
		a := testutil.ActionGen(s).Draw(t, "action")
		_ = r.Reduce(s, a)
		if !s.Equal(snapshot) {
			t.Fatalf("%#v mutated its input", a)
		}
	})
}

func TestCardCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting)
		s := model.BoardState{}
		for range rapid.IntRange(1, 30).Draw(t, "steps") {
			a := testutil.ActionGen(s).Draw(t, "action")
			next := r.Reduce(s, a)
			delta := next.TotalCards() - s.TotalCards()
			switch a.(type) {
			case board.AddTask:
				if delta != 1 {
					t.Fatalf("ADD_TASK changed count by %d", delta)
				}
			case board.DeleteTask:
				if delta != 0 && delta != -1 {
					t.Fatalf("DELETE_TASK changed count by %d", delta)
				}
			default:
				if delta != 0 {
					t.Fatalf("%T changed count by %d", a, delta)
				}
			}
			s = next
		}
	})
}

// boardMachine checks the Store against a simple model: the multiset of
// card ids only changes through ADD_TASK and DELETE_TASK.
type boardMachine struct {
	store *board.Store
	ids   map[string]bool
}

func (m *boardMachine) Add(t *rapid.T) {
	m.apply(board.AddTask{Text: testutil.TextGen().Draw(t, "text")})
}

func (m *boardMachine) Act(t *rapid.T) {
	m.apply(testutil.ActionGen(m.store.State()).Draw(t, "action"))
}

func (m *boardMachine) apply(a board.Action) {
	before := m.store.State()
	m.store.Dispatch(a)
	switch a := a.(type) {
	case board.AddTask:
		for _, c := range m.store.State().Todo {
			if !before.HasCard(c.ID) {
				m.ids[c.ID] = true
			}
		}
	case board.DeleteTask:
		if lane, _, found := before.Locate(a.CardID); found && lane == a.From {
			delete(m.ids, a.CardID)
		}
	}
}

func (m *boardMachine) Check(t *rapid.T) {
	s := m.store.State()
	if err := testutil.CheckInvariants(s); err != nil {
		t.Fatal(err)
	}
	if s.TotalCards() != len(m.ids) {
		t.Fatalf("board holds %d cards, model expects %d", s.TotalCards(), len(m.ids))
	}
	for id := range m.ids {
		if !s.HasCard(id) {
			t.Fatalf("card %q missing from board", id)
		}
	}
}

func TestStoreStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := &boardMachine{
			store: board.NewStore(model.BoardState{}, board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting)),
			ids:   map[string]bool{},
		}
		t.Repeat(rapid.StateMachineActions(m))
	})
}

func TestGeneratedSequencesKeepInvariants(t *testing.T) {
	g := testutil.New(testutil.GeneratorConfig{Seed: 7, StaleRate: 0.3})
	r := board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting)
	_, states := g.Sequence(r, model.BoardState{}, 500)
	for i, s := range states {
		if err := testutil.CheckInvariants(s); err != nil {
			t.Fatalf("state %d: %v", i, err)
		}
	}
}
