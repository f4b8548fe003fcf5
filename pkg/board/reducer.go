package board

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// MovePolicy decides what MOVE_CARD does with a card that is not where the
// payload says it is.
type MovePolicy int

const (
	// MoveRequireExisting looks the card up on the current board, uses its
	// real lane as the source and its current value as the payload. A card
	// that no longer exists is not moved.
	MoveRequireExisting MovePolicy = iota
	// MoveTrustPayload inserts the payload card unconditionally, filtering
	// only the named From and To lanes.
	MoveTrustPayload
)

func (p MovePolicy) String() string {
	switch p {
	case MoveTrustPayload:
		return "trust"
	default:
		return "existing"
	}
}

// ParseMovePolicy reads a config value: "existing" (default) or "trust".
func ParseMovePolicy(s string) (MovePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "existing":
		return MoveRequireExisting, nil
	case "trust":
		return MoveTrustPayload, nil
	default:
		return MoveRequireExisting, fmt.Errorf("unknown move policy %q (want existing or trust)", s)
	}
}

// maxIDDraws bounds how often the generator is asked before falling back to
// suffixing.
const maxIDDraws = 8

// Reducer applies actions to a BoardState. Reduce never mutates its input
// and never fails: inapplicable actions return the state unchanged.
type Reducer struct {
	IDs   IDGenerator
	Moves MovePolicy
}

// NewReducer returns a Reducer. A nil generator means NewCounterGenerator.
func NewReducer(ids IDGenerator, moves MovePolicy) Reducer {
	if ids == nil {
		ids = NewCounterGenerator()
	}
	return Reducer{IDs: ids, Moves: moves}
}

// Reduce returns the board that results from applying a to s.
func (r Reducer) Reduce(s model.BoardState, a Action) model.BoardState {
	switch a := a.(type) {
	case AddTask:
		return r.addTask(s, a)
	case MoveCard:
		return r.moveCard(s, a)
	case DeleteTask:
		return deleteTask(s, a)
	case EditCard:
		return editCard(s, a)
	default:
		return s
	}
}

func (r Reducer) addTask(s model.BoardState, a AddTask) model.BoardState {
	card := model.Card{ID: r.freshID(s), Text: a.Text}
	return s.WithLane(model.LaneTodo, append(slices.Clip(s.Todo), card))
}

// freshID draws from the generator until it finds an id unused on s.
func (r Reducer) freshID(s model.BoardState) string {
	ids := r.IDs
	if ids == nil {
		ids = NewCounterGenerator()
	}
	var id string
	for range maxIDDraws {
		id = ids.NextID()
		if !s.HasCard(id) {
			return id
		}
	}
	for n := 1; ; n++ {
		candidate := id + "~" + strconv.Itoa(n)
		if !s.HasCard(candidate) {
			return candidate
		}
	}
}

func (r Reducer) moveCard(s model.BoardState, a MoveCard) model.BoardState {
	if !a.From.Valid() || !a.To.Valid() {
		return s
	}

	card, from := a.Card, a.From
	if r.Moves == MoveRequireExisting {
		lane, idx, ok := s.Locate(card.ID)
		if !ok {
			return s
		}
		from = lane
		card = s.Lane(lane)[idx]
	}

	source := without(s.Lane(from), card.ID)
	target := without(s.Lane(a.To), card.ID)

	at := -1
	if a.TargetID != "" {
		at = indexOf(target, a.TargetID)
	}
	if at == -1 || from != a.To {
		target = append(target, card)
	} else {
		target = slices.Insert(target, at, card)
	}

	return s.WithLane(from, source).WithLane(a.To, target)
}

func deleteTask(s model.BoardState, a DeleteTask) model.BoardState {
	lane := s.Lane(a.From)
	if indexOf(lane, a.CardID) == -1 {
		return s
	}
	return s.WithLane(a.From, without(lane, a.CardID))
}

func editCard(s model.BoardState, a EditCard) model.BoardState {
	lane := s.Lane(a.From)
	i := indexOf(lane, a.CardID)
	if i == -1 {
		return s
	}
	next := slices.Clone(lane)
	next[i].Text = a.NewText
	return s.WithLane(a.From, next)
}

// without returns a fresh slice holding every card of cards except id.
func without(cards []model.Card, id string) []model.Card {
	out := make([]model.Card, 0, len(cards)+1)
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(cards []model.Card, id string) int {
	return slices.IndexFunc(cards, func(c model.Card) bool { return c.ID == id })
}
