// Package drag tracks a single in-progress card drag. The session is pure
// interaction state: it never touches the board, it only turns a finished
// gesture into at most one action for the Store.
package drag

import (
	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// TargetKind says what a drop landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCard
	TargetLane
	TargetTrash
)

func (k TargetKind) String() string {
	switch k {
	case TargetCard:
		return "card"
	case TargetLane:
		return "lane"
	case TargetTrash:
		return "trash"
	default:
		return "none"
	}
}

// Target is a drop location.
type Target struct {
	Kind   TargetKind
	Lane   model.LaneID
	CardID string
}

// CardTarget is a drop onto the card id in lane.
func CardTarget(lane model.LaneID, id string) Target {
	return Target{Kind: TargetCard, Lane: lane, CardID: id}
}

// LaneTarget is a drop onto the empty space of lane.
func LaneTarget(lane model.LaneID) Target {
	return Target{Kind: TargetLane, Lane: lane}
}

// TrashTarget is a drop onto the trash.
func TrashTarget() Target {
	return Target{Kind: TargetTrash}
}

// PendingDelete is a trash drop waiting for the user to confirm.
type PendingDelete struct {
	Card model.Card
	From model.LaneID
}

// Action returns the DELETE_TASK to dispatch once confirmed.
func (p PendingDelete) Action() board.DeleteTask {
	return board.DeleteTask{CardID: p.Card.ID, From: p.From}
}

// Outcome is the result of a drop. At most one field is set.
type Outcome struct {
	Move   *board.MoveCard
	Delete *PendingDelete
}

// Empty reports whether the drop produced nothing.
func (o Outcome) Empty() bool {
	return o.Move == nil && o.Delete == nil
}

// Session is the drag state machine. The zero value is idle.
type Session struct {
	DraggedCardID string
	HoverTargetID string

	card model.Card
	from model.LaneID
}

// Start begins dragging card out of lane from, replacing any earlier drag.
func (s *Session) Start(card model.Card, from model.LaneID) {
	*s = Session{DraggedCardID: card.ID, card: card, from: from}
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.DraggedCardID != ""
}

// Payload returns the card and source lane captured at Start.
func (s *Session) Payload() (model.Card, model.LaneID, bool) {
	return s.card, s.from, s.Active()
}

// Hover marks targetID as the card under the pointer. Hovering the dragged
// card itself, or hovering while idle, changes nothing.
func (s *Session) Hover(targetID string) {
	if !s.Active() || targetID == s.DraggedCardID {
		return
	}
	s.HoverTargetID = targetID
}

// Leave clears the hover highlight when the pointer leaves the card that
// currently holds it.
func (s *Session) Leave(targetID string) {
	if s.HoverTargetID == targetID {
		s.HoverTargetID = ""
	}
}

// Hovered reports whether id is the current hover target.
func (s *Session) Hovered(id string) bool {
	return id != "" && s.HoverTargetID == id
}

// Drop finishes the drag on t. The session is idle afterwards whatever the
// outcome.
func (s *Session) Drop(t Target) Outcome {
	card, from, ok := s.Payload()
	s.Cancel()
	if !ok {
		return Outcome{}
	}

	switch t.Kind {
	case TargetCard:
		if !t.Lane.Valid() || t.CardID == "" {
			return Outcome{}
		}
		return Outcome{Move: &board.MoveCard{Card: card, From: from, To: t.Lane, TargetID: t.CardID}}
	case TargetLane:
		if !t.Lane.Valid() {
			return Outcome{}
		}
		return Outcome{Move: &board.MoveCard{Card: card, From: from, To: t.Lane}}
	case TargetTrash:
		return Outcome{Delete: &PendingDelete{Card: card, From: from}}
	default:
		return Outcome{}
	}
}

// Cancel abandons the drag.
func (s *Session) Cancel() {
	*s = Session{}
}
