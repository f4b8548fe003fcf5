package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/laneboard/pkg/drag"
)

// confirmDialog asks before a pending delete is dispatched.
type confirmDialog struct {
	form    *huh.Form
	pending drag.PendingDelete
	value   *bool
}

func newConfirmDialog(p drag.PendingDelete, width int) *confirmDialog {
	value := new(bool)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this card?").
				Description(truncate(singleLine(p.Card.Text), 50)).
				Affirmative("Delete").
				Negative("Keep").
				Value(value),
		),
	).WithTheme(huh.ThemeDracula()).
		WithShowHelp(false).
		WithWidth(clamp(width-4, 20, 60))
	return &confirmDialog{form: form, pending: p, value: value}
}

func (c *confirmDialog) View() string {
	return c.form.View() + "\n  y delete • n/esc keep"
}

// updateConfirm answers y/n/esc directly and hands everything else to the
// form, resolving once the form completes or aborts.
func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "y", "Y":
			return m.resolveDelete(true)
		case "n", "N", "esc":
			return m.resolveDelete(false)
		case "ctrl+c":
			return m.quit()
		}
	}

	form, cmd := m.confirm.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm.form = f
	}
	switch m.confirm.form.State {
	case huh.StateCompleted:
		return m.resolveDelete(*m.confirm.value)
	case huh.StateAborted:
		return m.resolveDelete(false)
	}
	return m, cmd
}

func (m Model) resolveDelete(ok bool) (tea.Model, tea.Cmd) {
	p := m.confirm.pending
	m.confirm = nil
	m.mode = modeBoard
	if ok {
		m.applyDelete(p)
	} else {
		m.setStatus("Kept %q", truncate(singleLine(p.Card.Text), 40))
	}
	m.clampSelection()
	return m, nil
}
