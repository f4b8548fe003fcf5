package testutil

import (
	"fmt"
	"testing"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// CheckInvariants returns an error describing the first violated board
// invariant: every card id appears at most once across all lanes.
func CheckInvariants(s model.BoardState) error {
	seen := make(map[string]model.LaneID)
	for _, lane := range model.Lanes {
		for _, c := range s.Lane(lane) {
			if prev, dup := seen[c.ID]; dup {
				return fmt.Errorf("card %q appears in %s and %s", c.ID, prev, lane)
			}
			seen[c.ID] = lane
		}
	}
	return nil
}

// AssertInvariants fails the test if s violates a board invariant.
func AssertInvariants(t testing.TB, s model.BoardState) {
	t.Helper()
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

// AssertLane verifies the card ids of one lane, in order.
func AssertLane(t testing.TB, s model.BoardState, lane model.LaneID, want ...string) {
	t.Helper()
	got := IDs(s.Lane(lane))
	if len(got) != len(want) {
		t.Fatalf("lane %s = %v, want %v", lane, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("lane %s = %v, want %v", lane, got, want)
		}
	}
}

// IDs lists the ids of cards.
func IDs(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
