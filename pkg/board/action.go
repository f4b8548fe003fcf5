// Package board implements the board state machine: the closed set of
// actions, the pure reducer that applies them and the Store that owns the
// single authoritative BoardState.
package board

import (
	"strings"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Kind is the wire name of an action.
type Kind string

const (
	KindAddTask    Kind = "ADD_TASK"
	KindMoveCard   Kind = "MOVE_CARD"
	KindDeleteTask Kind = "DELETE_TASK"
	KindEditCard   Kind = "EDIT_CARD"
)

// Action is a request to transition the board. The set of implementations
// is closed: AddTask, MoveCard, DeleteTask, EditCard and Unknown.
type Action interface {
	Kind() Kind
	isAction()
}

// AddTask appends a new card to the todo lane. Text must already be trimmed
// and non-empty.
type AddTask struct {
	Text string
}

// MoveCard moves Card from lane From to lane To. TargetID, when set, names
// the card the drop landed on; it only matters for same-lane reorders.
type MoveCard struct {
	Card     model.Card
	From     model.LaneID
	To       model.LaneID
	TargetID string
}

// DeleteTask removes CardID from lane From.
type DeleteTask struct {
	CardID string
	From   model.LaneID
}

// EditCard replaces the text of CardID in lane From.
type EditCard struct {
	CardID  string
	From    model.LaneID
	NewText string
}

// Unknown carries an action type this build does not understand. The
// reducer treats it as a no-op.
type Unknown struct {
	Type    string
	Payload []byte
}

func (AddTask) Kind() Kind    { return KindAddTask }
func (MoveCard) Kind() Kind   { return KindMoveCard }
func (DeleteTask) Kind() Kind { return KindDeleteTask }
func (EditCard) Kind() Kind   { return KindEditCard }
func (u Unknown) Kind() Kind  { return Kind(u.Type) }

func (AddTask) isAction()    {}
func (MoveCard) isAction()   {}
func (DeleteTask) isAction() {}
func (EditCard) isAction()   {}
func (Unknown) isAction()    {}

// NormalizeText trims user input and reports whether anything is left.
// Callers run it before building AddTask or EditCard.
func NormalizeText(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}
