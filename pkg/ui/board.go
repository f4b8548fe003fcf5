package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// renderBoard draws the lane headers, cards and trash column. The result
// has exactly 1+bodyRows lines, matching layout.hit.
func (m Model) renderBoard() string {
	s := m.store.State()
	cols := make([][]string, 0, trashCol+1)
	for i := range trashCol {
		cols = append(cols, m.renderLane(s, i))
	}
	cols = append(cols, m.renderTrash())
	return m.joinColumnsWithSeparators(cols)
}

func (m Model) renderLane(s model.BoardState, i int) []string {
	t := m.theme
	l := m.layout
	id := model.Lanes[i]
	cards := s.Lane(id)

	bg := t.LaneColor(id)
	if m.focus == i {
		bg = t.Primary
	}
	title := truncate(fmt.Sprintf("%s (%d)", id.Title(), len(cards)), l.laneWidth-2)
	lines := []string{t.Header.Background(bg).Width(l.laneWidth).Render(title)}

	body := make([]string, 0, l.bodyRows())
	end := min(l.offsets[i]+l.visible, len(cards))
	for row := l.offsets[i]; row < end; row++ {
		body = append(body, strings.Split(m.renderCard(cards[row], i, row), "\n")...)
	}

	switch {
	case m.carrying && m.focus == i && m.rows[i] >= len(cards):
		if len(body) < l.bodyRows() {
			body = append(body, t.DropMarker.Render(truncate("▸ drop here", l.laneWidth)))
		}
	case len(cards) == 0:
		body = append(body, t.MutedText.Render(" (empty)"))
	case l.offsets[i]+l.visible < len(cards) && len(body) < l.bodyRows():
		body = append(body, t.MutedText.Render(fmt.Sprintf(" ↓ %d more", len(cards)-end)))
	}

	for len(body) < l.bodyRows() {
		body = append(body, "")
	}
	for _, line := range body[:l.bodyRows()] {
		lines = append(lines, padRight(line, l.laneWidth))
	}
	return lines
}

// renderCard draws one bordered card, cardHeight lines tall.
func (m Model) renderCard(c model.Card, lane, row int) string {
	t := m.theme
	inner := m.layout.laneWidth - 4
	style := t.Card.Width(m.layout.laneWidth - 2)

	dragged := m.drag.DraggedCardID == c.ID
	switch {
	case m.drag.Hovered(c.ID), m.carrying && m.focus == lane && m.rows[lane] == row && !dragged:
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(ColorWarning)
	case dragged:
		style = style.BorderForeground(ColorPink).Faint(true)
	case !m.carrying && m.focus == lane && m.rows[lane] == row:
		style = style.BorderForeground(t.Primary).Bold(true)
	}

	text := truncate(singleLine(c.Text), inner)
	if m.mode == modeEdit && m.editing.id == c.ID {
		text = m.editInput.View()
	}
	return style.Render(text)
}

func (m Model) renderTrash() []string {
	t := m.theme
	active := (m.carrying && m.focus == trashCol) || (m.drag.Active() && m.overTrash)

	lines := []string{t.Header.Background(t.Danger).Width(trashWidth).Render("TRASH")}
	style := t.Trash
	if active {
		style = t.TrashActive
	}
	mid := m.layout.bodyRows() / 2
	for row := range m.layout.bodyRows() {
		var cell string
		switch row {
		case mid - 1:
			cell = "✕"
		case mid:
			if m.drag.Active() {
				cell = "drop"
			}
		}
		lines = append(lines, style.Width(trashWidth).Render(cell))
	}
	return lines
}

// joinColumnsWithSeparators joins pre-split columns line by line with a
// solid vertical separator.
func (m Model) joinColumnsWithSeparators(cols [][]string) string {
	if len(cols) == 0 {
		return ""
	}
	sep := m.theme.Separator.Render("│")
	maxLines := 0
	for _, c := range cols {
		maxLines = max(maxLines, len(c))
	}

	var sb strings.Builder
	for row := range maxLines {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for i, c := range cols {
			if i > 0 {
				sb.WriteString(sep)
			}
			if row < len(c) {
				sb.WriteString(c[row])
			}
		}
	}
	return sb.String()
}

func (m Model) renderTitleBar() string {
	s := m.store.State()
	title := fmt.Sprintf(" LANEBOARD  %d cards · rev %d", s.TotalCards(), m.store.Revision())
	if card, _, ok := m.drag.Payload(); ok {
		title += "  ⇅ " + singleLine(card.Text)
	}
	return m.theme.Title.Width(m.width).Render(truncate(title, m.width))
}

func (m Model) renderInputLine() string {
	if m.mode == modeAdd {
		return padRight("+ "+m.addInput.View(), m.width)
	}
	return m.theme.MutedText.Render(truncate("+ press a to add a task", m.width))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := m.theme.StatusText
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(truncate(m.statusMsg, m.width))
	}
	switch m.mode {
	case modeAdd, modeEdit:
		return m.theme.MutedText.Render("enter save • esc cancel")
	case modeDetail:
		return m.theme.MutedText.Render("j/k scroll • tab/esc close")
	}
	if m.carrying {
		return m.help.ShortHelpView(m.keys.carryHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
