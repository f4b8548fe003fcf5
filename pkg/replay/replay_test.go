package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/testutil"
	"github.com/vanderheijden86/laneboard/pkg/watcher"
	"github.com/vanderheijden86/laneboard/pkg/wire"
)

func newStore() *board.Store {
	return board.NewStore(model.BoardState{}, board.NewReducer(&testutil.SequentialIDs{}, board.MoveRequireExisting))
}

const script = `# build a small board
{"type":"ADD_TASK","payload":{"text":"Write spec"}}
{"type":"ADD_TASK","payload":{"text":"Review"}}
{"type":"MOVE_CARD","payload":{"card":{"id":"c1","text":"Write spec"},"from":"todo","to":"done"}}
{"type":"ARCHIVE_CARD","payload":{"cardId":"c2"}}
{"type":"DELETE_TASK","payload":{"cardId":"c9","from":"todo"}}
{"type":"EDIT_CARD","payload":{"cardId":"c2","from":"todo","newText":"Review PR"}}
`

func TestRunAppliesScript(t *testing.T) {
	st := newStore()
	rep, err := Run(context.Background(), st, strings.NewReader(script), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := st.State()
	testutil.AssertLane(t, s, model.LaneTodo, "c2")
	testutil.AssertLane(t, s, model.LaneDone, "c1")
	if s.Todo[0].Text != "Review PR" {
		t.Fatalf("edit not applied: %q", s.Todo[0].Text)
	}

	if rep.Total() != 6 || rep.Applied != 4 || rep.NoOps != 2 || rep.Unknown != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.ByKind[board.KindAddTask] != 2 || rep.ByKind["ARCHIVE_CARD"] != 1 {
		t.Fatalf("by kind = %v", rep.ByKind)
	}
	if !strings.Contains(rep.String(), "ADD_TASK=2") {
		t.Fatalf("summary = %s", rep)
	}
}

func TestRunStopsAtBadLine(t *testing.T) {
	in := `{"type":"ADD_TASK","payload":{"text":"one"}}
{"type":
{"type":"ADD_TASK","payload":{"text":"two"}}
`
	st := newStore()
	rep, err := Run(context.Background(), st, strings.NewReader(in), Options{})
	var lerr *wire.LineError
	if !errors.As(err, &lerr) || lerr.Line != 2 {
		t.Fatalf("expected LineError at line 2, got %v", err)
	}
	if rep.Applied != 1 || st.State().TotalCards() != 1 {
		t.Fatalf("expected one applied action before the error, got %+v", rep)
	}
}

func TestRunSkipInvalid(t *testing.T) {
	in := "{nope}\n" + `{"type":"ADD_TASK","payload":{"text":"two"}}` + "\n"
	st := newStore()
	rep, err := Run(context.Background(), st, strings.NewReader(in), Options{SkipInvalid: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Invalid != 1 || rep.Applied != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := newStore()
	if _, err := Run(ctx, st, strings.NewReader(script), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if st.Revision() != 0 {
		t.Fatalf("cancelled run dispatched actions")
	}
}

func TestApply(t *testing.T) {
	st := newStore()
	rep := Apply(st, []board.Action{board.AddTask{Text: "a"}, nil, board.Unknown{Type: "X"}})
	if rep.Applied != 1 || rep.Unknown != 1 || rep.Total() != 2 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestFollowerReadsOnlyCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	f := NewFollower(path)

	if actions, err := f.Poll(); err != nil || len(actions) != 0 {
		t.Fatalf("missing file: %v, %v", actions, err)
	}

	write := func(s string) {
		t.Helper()
		fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			t.Fatal(err)
		}
		defer fh.Close()
		if _, err := fh.WriteString(s); err != nil {
			t.Fatal(err)
		}
	}

	write(`{"type":"ADD_TASK","payload":{"text":"one"}}` + "\n" + `{"type":"ADD_TA`)
	actions, err := f.Poll()
	if err != nil || len(actions) != 1 {
		t.Fatalf("first poll = %v, %v", actions, err)
	}

	write(`SK","payload":{"text":"two"}}` + "\n")
	actions, err = f.Poll()
	if err != nil || len(actions) != 1 || actions[0] != (board.AddTask{Text: "two"}) {
		t.Fatalf("second poll = %v, %v", actions, err)
	}

	if actions, _ := f.Poll(); len(actions) != 0 {
		t.Fatalf("no new data should yield nothing, got %v", actions)
	}
}

func TestFollowerReportsAbsoluteLineNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	first := `{"type":"ADD_TASK","payload":{"text":"one"}}` + "\n# note\n"
	if err := os.WriteFile(path, []byte(first), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFollower(path)
	if _, err := f.Poll(); err != nil {
		t.Fatal(err)
	}

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fh.WriteString("garbage\n" + `{"type":"ADD_TASK","payload":{"text":"two"}}` + "\n")
	fh.Close()

	actions, err := f.Poll()
	var lerr *wire.LineError
	if !errors.As(err, &lerr) || lerr.Line != 3 {
		t.Fatalf("expected LineError at line 3, got %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("good line after bad one was dropped: %v", actions)
	}
}

func TestFollowerKeepsLinesAfterOverLongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	content := `{"type":"ADD_TASK","payload":{"text":"one"}}` + "\n" +
		`{"type":"ADD_TASK","payload":{"text":"` + strings.Repeat("x", 1100*1024) + `"}}` + "\n" +
		`{"type":"ADD_TASK","payload":{"text":"three"}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewFollower(path)
	actions, err := f.Poll()
	if !errors.Is(err, wire.ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
	if len(actions) != 2 || actions[1] != (board.AddTask{Text: "three"}) {
		t.Fatalf("actions = %v", actions)
	}
	if f.Offset() != int64(len(content)) {
		t.Errorf("offset = %d, want %d", f.Offset(), len(content))
	}
	if more, err := f.Poll(); err != nil || len(more) != 0 {
		t.Errorf("second poll = %v, %v", more, err)
	}
}

func TestFollowerRestartsAfterTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	long := `{"type":"ADD_TASK","payload":{"text":"a long first task"}}` + "\n"
	if err := os.WriteFile(path, []byte(long), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFollower(path)
	if actions, _ := f.Poll(); len(actions) != 1 {
		t.Fatalf("initial poll = %v", actions)
	}

	short := `{"type":"ADD_TASK","payload":{"text":"b"}}` + "\n"
	if err := os.WriteFile(path, []byte(short), 0644); err != nil {
		t.Fatal(err)
	}
	actions, err := f.Poll()
	if err != nil || len(actions) != 1 || actions[0] != (board.AddTask{Text: "b"}) {
		t.Fatalf("after truncate = %v, %v", actions, err)
	}
	if f.Offset() != int64(len(short)) {
		t.Fatalf("offset = %d", f.Offset())
	}
}

func TestFollowDeliversBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"ADD_TASK","payload":{"text":"seed"}}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := watcher.New(path,
		watcher.WithForcePoll(true),
		watcher.WithPollInterval(20*time.Millisecond),
		watcher.WithDebounceDuration(10*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu      sync.Mutex
		batches [][]board.Action
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, NewFollower(path), w, func(a []board.Action) {
			mu.Lock()
			batches = append(batches, a)
			mu.Unlock()
		})
	}()

	time.Sleep(60 * time.Millisecond)
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fh.WriteString(`{"type":"ADD_TASK","payload":{"text":"later"}}` + "\n")
	fh.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) < 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[1][0] != (board.AddTask{Text: "later"}) {
		t.Fatalf("second batch = %v", batches[1])
	}
}
