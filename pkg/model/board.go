// Package model holds the board data types shared by every layer: cards,
// lane identifiers and the immutable BoardState value.
package model

import "slices"

// LaneID names one of the three fixed lanes of the board.
type LaneID string

const (
	LaneTodo       LaneID = "todo"
	LaneInProgress LaneID = "inProgress"
	LaneDone       LaneID = "done"
)

// Lanes lists every lane in display order.
var Lanes = [3]LaneID{LaneTodo, LaneInProgress, LaneDone}

// Valid reports whether l is one of the three known lanes.
func (l LaneID) Valid() bool {
	switch l {
	case LaneTodo, LaneInProgress, LaneDone:
		return true
	}
	return false
}

// Title returns the column heading shown for the lane.
func (l LaneID) Title() string {
	switch l {
	case LaneTodo:
		return "TO-DO"
	case LaneInProgress:
		return "IN PROGRESS"
	case LaneDone:
		return "DONE"
	default:
		return string(l)
	}
}

// Index returns the display position of the lane, or -1 if unknown.
func (l LaneID) Index() int {
	for i, id := range Lanes {
		if id == l {
			return i
		}
	}
	return -1
}

// Card is a single task on the board.
type Card struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// BoardState is the whole board. Values are treated as immutable: every
// transition builds a new BoardState and never writes into the slices of an
// existing one.
type BoardState struct {
	Todo       []Card `json:"todo"`
	InProgress []Card `json:"inProgress"`
	Done       []Card `json:"done"`
}

// Lane returns the cards of lane id. Unknown lanes yield nil.
// The returned slice must not be modified.
func (s BoardState) Lane(id LaneID) []Card {
	switch id {
	case LaneTodo:
		return s.Todo
	case LaneInProgress:
		return s.InProgress
	case LaneDone:
		return s.Done
	default:
		return nil
	}
}

// WithLane returns a copy of s whose lane id is replaced by cards.
// Unknown lanes return s unchanged.
func (s BoardState) WithLane(id LaneID, cards []Card) BoardState {
	switch id {
	case LaneTodo:
		s.Todo = cards
	case LaneInProgress:
		s.InProgress = cards
	case LaneDone:
		s.Done = cards
	}
	return s
}

// Locate finds the lane and position holding cardID.
func (s BoardState) Locate(cardID string) (LaneID, int, bool) {
	for _, id := range Lanes {
		for i, c := range s.Lane(id) {
			if c.ID == cardID {
				return id, i, true
			}
		}
	}
	return "", -1, false
}

// Card returns the card with the given id, wherever it lives.
func (s BoardState) Card(cardID string) (Card, bool) {
	lane, i, ok := s.Locate(cardID)
	if !ok {
		return Card{}, false
	}
	return s.Lane(lane)[i], true
}

// HasCard reports whether any lane contains cardID.
func (s BoardState) HasCard(cardID string) bool {
	_, _, ok := s.Locate(cardID)
	return ok
}

// TotalCards counts cards across all lanes.
func (s BoardState) TotalCards() int {
	return len(s.Todo) + len(s.InProgress) + len(s.Done)
}

// Equal compares two boards by value. Nil and empty lanes are equal.
func (s BoardState) Equal(o BoardState) bool {
	for _, id := range Lanes {
		if !slices.Equal(s.Lane(id), o.Lane(id)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s BoardState) Clone() BoardState {
	return BoardState{
		Todo:       slices.Clone(s.Todo),
		InProgress: slices.Clone(s.InProgress),
		Done:       slices.Clone(s.Done),
	}
}
