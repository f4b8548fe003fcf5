package testutil

import (
	"pgregory.net/rapid"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// LaneGen draws one of the three lanes.
func LaneGen() *rapid.Generator[model.LaneID] {
	return rapid.SampledFrom(model.Lanes[:])
}

// TextGen draws short non-empty card texts.
func TextGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z ]{0,11}`)
}

// ActionGen draws an action for board s. Card references mostly hit cards on
// the board but sometimes name ids that do not exist, and MOVE_CARD payloads
// may claim the wrong source lane.
func ActionGen(s model.BoardState) *rapid.Generator[board.Action] {
	return rapid.Custom(func(t *rapid.T) board.Action {
		all := allCards(s)
		if len(all) == 0 || rapid.IntRange(0, 3).Draw(t, "add") == 0 {
			return board.AddTask{Text: TextGen().Draw(t, "text")}
		}

		var card model.Card
		if rapid.IntRange(0, 9).Draw(t, "stale") == 0 {
			card = model.Card{ID: rapid.StringMatching(`ghost-[0-9]`).Draw(t, "ghost"), Text: "ghost"}
		} else {
			card = rapid.SampledFrom(all).Draw(t, "card")
		}
		from := LaneGen().Draw(t, "from")
		if lane, _, ok := s.Locate(card.ID); ok && rapid.Bool().Draw(t, "honest") {
			from = lane
		}

		switch rapid.IntRange(0, 3).Draw(t, "kind") {
		case 0:
			return board.DeleteTask{CardID: card.ID, From: from}
		case 1:
			return board.EditCard{CardID: card.ID, From: from, NewText: TextGen().Draw(t, "newText")}
		default:
			to := LaneGen().Draw(t, "to")
			mv := board.MoveCard{Card: card, From: from, To: to}
			if target := s.Lane(to); len(target) > 0 && rapid.Bool().Draw(t, "hasTarget") {
				mv.TargetID = rapid.SampledFrom(target).Draw(t, "target").ID
			}
			return mv
		}
	})
}

func allCards(s model.BoardState) []model.Card {
	out := make([]model.Card, 0, s.TotalCards())
	for _, id := range model.Lanes {
		out = append(out, s.Lane(id)...)
	}
	return out
}
