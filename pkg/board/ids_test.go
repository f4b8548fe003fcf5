package board_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vanderheijden86/laneboard/pkg/board"
)

func TestCounterGeneratorSameMillisecond(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	g := board.NewCounterGeneratorWithClock(func() time.Time { return now })

	got := []string{g.NextID(), g.NextID(), g.NextID()}
	want := []string{"1700000000000", "1700000000000-1", "1700000000000-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}

	now = now.Add(time.Millisecond)
	if id := g.NextID(); id != "1700000000001" {
		t.Fatalf("after tick id = %q", id)
	}
}

func TestCounterGeneratorClockStepsBack(t *testing.T) {
	now := time.UnixMilli(5000)
	g := board.NewCounterGeneratorWithClock(func() time.Time { return now })

	first := g.NextID()
	now = time.UnixMilli(4000)
	second := g.NextID()
	if first == second {
		t.Fatalf("ids repeated after clock step back: %q", first)
	}
	if !strings.HasPrefix(second, "5000-") {
		t.Fatalf("expected sequence on last timestamp, got %q", second)
	}
}

func TestUUIDGenerator(t *testing.T) {
	g := board.UUIDGenerator{}
	a, b := g.NextID(), g.NextID()
	if a == b {
		t.Fatalf("uuid generator repeated %q", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("not a uuid: %q: %v", a, err)
	}
}

func TestNewIDGenerator(t *testing.T) {
	if g, err := board.NewIDGenerator(""); err != nil {
		t.Fatalf("default strategy: %v", err)
	} else if _, ok := g.(*board.CounterGenerator); !ok {
		t.Fatalf("default strategy = %T", g)
	}
	if g, err := board.NewIDGenerator("UUID"); err != nil {
		t.Fatalf("uuid strategy: %v", err)
	} else if _, ok := g.(board.UUIDGenerator); !ok {
		t.Fatalf("uuid strategy = %T", g)
	}
	if _, err := board.NewIDGenerator("snowflake"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
