package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces card ids. Implementations need not know the board;
// the reducer re-draws on collision.
type IDGenerator interface {
	NextID() string
}

// CounterGenerator issues millisecond-timestamp ids. Two ids requested in
// the same millisecond (or after the clock steps back) get a sequence
// suffix, so the stream never repeats.
type CounterGenerator struct {
	now  func() time.Time
	last int64
	seq  int
}

// NewCounterGenerator returns a generator using the wall clock.
func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{now: time.Now}
}

// NewCounterGeneratorWithClock is NewCounterGenerator with an injected clock.
func NewCounterGeneratorWithClock(now func() time.Time) *CounterGenerator {
	return &CounterGenerator{now: now}
}

// NextID implements IDGenerator.
func (g *CounterGenerator) NextID() string {
	ms := g.now().UnixMilli()
	if ms <= g.last {
		g.seq++
		ms = g.last
	} else {
		g.last = ms
		g.seq = 0
	}
	if g.seq == 0 {
		return strconv.FormatInt(ms, 10)
	}
	return fmt.Sprintf("%d-%d", ms, g.seq)
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

// NextID implements IDGenerator.
func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// NewIDGenerator builds the generator named by a config strategy:
// "counter" (default) or "uuid".
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", "counter":
		return NewCounterGenerator(), nil
	case "uuid":
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (want counter or uuid)", strategy)
	}
}
