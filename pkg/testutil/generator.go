// Package testutil provides deterministic fixtures and action generators for
// board tests. All generators take a seed so failures reproduce.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// SequentialIDs hands out "<prefix>1", "<prefix>2", ... and is handy when a
// test wants to predict card ids.
type SequentialIDs struct {
	Prefix string
	n      int
}

// NextID implements board.IDGenerator.
func (s *SequentialIDs) NextID() string {
	s.n++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "c"
	}
	return fmt.Sprintf("%s%d", prefix, s.n)
}

// Board builds a BoardState from lane contents given as card ids; the text
// of each card is "Task <id>".
func Board(todo, inProgress, done []string) model.BoardState {
	mk := func(ids []string) []model.Card {
		cards := make([]model.Card, 0, len(ids))
		for _, id := range ids {
			cards = append(cards, Card(id))
		}
		return cards
	}
	return model.BoardState{Todo: mk(todo), InProgress: mk(inProgress), Done: mk(done)}
}

// Card returns the fixture card for id.
func Card(id string) model.Card {
	return model.Card{ID: id, Text: "Task " + id}
}

// Lane ids as a plain slice, convenient for random picks.
func Lane(ids ...string) []string { return ids }

// GeneratorConfig controls action sequence generation.
type GeneratorConfig struct {
	Seed int64 // Random seed for determinism (0 = 42)
	// StaleRate is the fraction of MOVE/DELETE/EDIT actions that reference a
	// random id instead of a card on the board.
	StaleRate float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, StaleRate: 0.1}
}

// Generator produces plausible action sequences against an evolving board.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Next returns an action that makes sense for s (most of the time).
func (g *Generator) Next(s model.BoardState) board.Action {
	if s.TotalCards() == 0 || g.rng.Intn(4) == 0 {
		return board.AddTask{Text: fmt.Sprintf("task %d", g.rng.Intn(1000))}
	}

	lane, card := g.pick(s)
	if g.rng.Float64() < g.cfg.StaleRate {
		card = model.Card{ID: fmt.Sprintf("ghost-%d", g.rng.Intn(50)), Text: "ghost"}
	}

	switch g.rng.Intn(5) {
	case 0:
		return board.DeleteTask{CardID: card.ID, From: lane}
	case 1:
		return board.EditCard{CardID: card.ID, From: lane, NewText: fmt.Sprintf("edited %d", g.rng.Intn(1000))}
	default:
		to := model.Lanes[g.rng.Intn(len(model.Lanes))]
		mv := board.MoveCard{Card: card, From: lane, To: to}
		if target := s.Lane(to); len(target) > 0 && g.rng.Intn(2) == 0 {
			mv.TargetID = target[g.rng.Intn(len(target))].ID
		}
		return mv
	}
}

// Sequence applies n generated actions through r starting from s and returns
// the actions together with every intermediate board (len n+1).
func (g *Generator) Sequence(r board.Reducer, s model.BoardState, n int) ([]board.Action, []model.BoardState) {
	actions := make([]board.Action, 0, n)
	states := make([]model.BoardState, 0, n+1)
	states = append(states, s)
	for i := 0; i < n; i++ {
		a := g.Next(s)
		s = r.Reduce(s, a)
		actions = append(actions, a)
		states = append(states, s)
	}
	return actions, states
}

func (g *Generator) pick(s model.BoardState) (model.LaneID, model.Card) {
	n := g.rng.Intn(s.TotalCards())
	for _, id := range model.Lanes {
		cards := s.Lane(id)
		if n < len(cards) {
			return id, cards[n]
		}
		n -= len(cards)
	}
	panic("unreachable: pick index out of range")
}
