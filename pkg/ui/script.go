package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/replay"
	"github.com/vanderheijden86/laneboard/pkg/watcher"
)

// ScriptActionsMsg carries a batch of actions appended to a followed script.
type ScriptActionsMsg struct {
	Actions []board.Action
}

// ScriptDoneMsg reports that the followed script feed has closed.
type ScriptDoneMsg struct{}

// WaitForScript returns a command that blocks until the next batch arrives
// on ch. It returns nil for a nil channel.
func WaitForScript(ch <-chan []board.Action) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		actions, ok := <-ch
		if !ok {
			return ScriptDoneMsg{}
		}
		return ScriptActionsMsg{Actions: actions}
	}
}

// FollowScript tails path in the background and sends every batch of newly
// appended actions on the returned channel until ctx is done. The channel
// is closed afterwards. Actions are never dispatched here; the Model does
// that inside Update.
func FollowScript(ctx context.Context, path string, opts ...watcher.Option) (<-chan []board.Action, error) {
	w, err := watcher.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("follow %s: %w", path, err)
	}

	ch := make(chan []board.Action, 16)
	f := replay.NewFollower(path)
	go func() {
		defer close(ch)
		err := replay.Follow(ctx, f, w, func(actions []board.Action) {
			select {
			case ch <- actions:
			case <-ctx.Done():
			}
		})
		if err != nil {
			debug.Error(err, "follow script")
		}
	}()
	return ch, nil
}
