package wire

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// snapshot pins the lane field order and writes empty lanes as [] rather
// than null.
type snapshot struct {
	Todo       []model.Card `json:"todo"`
	InProgress []model.Card `json:"inProgress"`
	Done       []model.Card `json:"done"`
}

func nonNil(cards []model.Card) []model.Card {
	if cards == nil {
		return []model.Card{}
	}
	return cards
}

func toSnapshot(s model.BoardState) snapshot {
	return snapshot{Todo: nonNil(s.Todo), InProgress: nonNil(s.InProgress), Done: nonNil(s.Done)}
}

// MarshalSnapshot encodes a board.
func MarshalSnapshot(s model.BoardState) ([]byte, error) {
	return json.Marshal(toSnapshot(s))
}

// MarshalSnapshotIndent encodes a board for humans.
func MarshalSnapshotIndent(s model.BoardState) ([]byte, error) {
	return json.MarshalIndent(toSnapshot(s), "", "  ")
}

// UnmarshalSnapshot decodes a board.
func UnmarshalSnapshot(data []byte) (model.BoardState, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.BoardState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return model.BoardState{Todo: snap.Todo, InProgress: snap.InProgress, Done: snap.Done}, nil
}
