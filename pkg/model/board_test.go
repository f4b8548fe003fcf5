package model

import "testing"

func sampleBoard() BoardState {
	return BoardState{
		Todo:       []Card{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
		InProgress: []Card{{ID: "c", Text: "C"}},
	}
}

func TestLaneIDValid(t *testing.T) {
	for _, id := range Lanes {
		if !id.Valid() {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	if LaneID("archive").Valid() {
		t.Fatalf("unexpected valid lane")
	}
	if LaneID("archive").Index() != -1 {
		t.Fatalf("unknown lane should have index -1")
	}
	if LaneDone.Index() != 2 {
		t.Fatalf("done should be the third lane, got %d", LaneDone.Index())
	}
}

func TestLocateAndCard(t *testing.T) {
	s := sampleBoard()

	lane, idx, ok := s.Locate("b")
	if !ok || lane != LaneTodo || idx != 1 {
		t.Fatalf("Locate(b) = %q,%d,%v", lane, idx, ok)
	}
	if _, _, ok := s.Locate("zzz"); ok {
		t.Fatalf("expected missing card")
	}
	c, ok := s.Card("c")
	if !ok || c.Text != "C" {
		t.Fatalf("Card(c) = %+v,%v", c, ok)
	}
	if s.TotalCards() != 3 {
		t.Fatalf("TotalCards = %d", s.TotalCards())
	}
}

func TestWithLaneDoesNotMutateOriginal(t *testing.T) {
	s := sampleBoard()
	next := s.WithLane(LaneDone, []Card{{ID: "d", Text: "D"}})

	if len(s.Done) != 0 {
		t.Fatalf("original board changed: %+v", s.Done)
	}
	if len(next.Done) != 1 || next.Done[0].ID != "d" {
		t.Fatalf("unexpected done lane %+v", next.Done)
	}
	if got := s.WithLane("bogus", nil); !got.Equal(s) {
		t.Fatalf("unknown lane should be ignored")
	}
}

func TestEqualTreatsNilAndEmptyAlike(t *testing.T) {
	a := BoardState{Todo: []Card{}}
	b := BoardState{}
	if !a.Equal(b) {
		t.Fatalf("empty and nil lanes should compare equal")
	}
	c := sampleBoard()
	d := c.Clone()
	d.Todo[0].Text = "changed"
	if c.Equal(d) {
		t.Fatalf("clone should be independent")
	}
}
