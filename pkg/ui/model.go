// Package ui is the bubbletea front end of the board: three lane columns, a
// trash column, keyboard and mouse drag and drop, inline editing, a delete
// confirmation dialog and a markdown detail panel.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/laneboard/pkg/board"
	"github.com/vanderheijden86/laneboard/pkg/config"
	"github.com/vanderheijden86/laneboard/pkg/debug"
	"github.com/vanderheijden86/laneboard/pkg/drag"
	"github.com/vanderheijden86/laneboard/pkg/metrics"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

type mode int

const (
	modeBoard mode = iota
	modeAdd
	modeEdit
	modeConfirm
	modeDetail
	modeHelp
)

const doubleClickWindow = 400 * time.Millisecond

// Options configures a Model.
type Options struct {
	Mouse          bool
	ConfirmDeletes bool
	MinColumnWidth int
	MarkdownStyle  string
	// Script delivers batches of actions read from a followed script.
	Script <-chan []board.Action
}

// OptionsFromConfig maps the ui section of cfg onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Mouse:          cfg.MouseEnabled(),
		ConfirmDeletes: cfg.ConfirmDeletes(),
		MinColumnWidth: cfg.UI.MinColumnWidth,
		MarkdownStyle:  cfg.UI.MarkdownStyle,
	}
}

type editTarget struct {
	id       string
	original string
}

// Model is the root bubbletea model. The store is only written from Update.
type Model struct {
	store *board.Store
	opts  Options
	theme Theme
	keys  keyMap
	help  help.Model

	width  int
	height int
	layout layout

	// focus is the lane index, or trashCol while carrying a card.
	focus int
	rows  [trashCol]int

	drag      drag.Session
	carrying  bool
	dragMoved bool
	overTrash bool

	mode      mode
	addInput  textinput.Model
	editInput textinput.Model
	editing   editTarget
	confirm   *confirmDialog

	detail         viewport.Model
	detailRenderer *glamour.TermRenderer
	detailWidth    int

	lastClickID string
	lastClick   time.Time
	now         func() time.Time
	copyText    func(string) error

	statusMsg     string
	statusIsError bool
	quitting      bool
}

// NewModel builds the UI around store.
func NewModel(store *board.Store, opts Options) Model {
	if opts.MinColumnWidth <= 0 {
		opts.MinColumnWidth = 20
	}

	add := textinput.New()
	add.Prompt = ""
	add.Placeholder = "What needs doing?"
	add.CharLimit = 500

	edit := textinput.New()
	edit.Prompt = ""
	edit.CharLimit = 500

	m := Model{
		store:     store,
		opts:      opts,
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		keys:      defaultKeyMap(),
		help:      help.New(),
		addInput:  add,
		editInput: edit,
		detail:    viewport.New(80, 20),
		now:       time.Now,
		copyText:  clipboard.WriteAll,
	}
	m.resize(80, 24)
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Script != nil {
		cmds = append(cmds, WaitForScript(m.opts.Script))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case ScriptActionsMsg:
		return m.applyScript(msg)
	case ScriptDoneMsg:
		m.opts.Script = nil
		return m, nil
	}

	// The confirm form needs every message type, not only keys.
	if m.mode == modeConfirm && m.confirm != nil {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeAdd:
		m.addInput, cmd = m.addInput.Update(msg)
	case modeEdit:
		m.editInput, cmd = m.editInput.Update(msg)
	case modeDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.quitting {
		return ""
	}

	bodyHeight := 1 + m.layout.bodyRows()
	var body string
	switch m.mode {
	case modeConfirm:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View())
	case modeDetail:
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.detail.View())
	case modeHelp:
		h := m.help
		h.ShowAll = true
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, h.View(m.keys))
	default:
		body = m.renderBoard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(),
		m.renderInputLine(),
		body,
		m.renderFooter(),
	)
}

func (m *Model) resize(width, height int) {
	offsets := m.layout.offsets
	m.width, m.height = width, height
	m.layout = newLayout(width, height, m.opts.MinColumnWidth)
	m.layout.offsets = offsets
	m.help.Width = width
	m.addInput.Width = max(width-4, 1)
	m.editInput.Width = max(m.layout.laneWidth-5, 1)
	m.detail.Width = width
	m.detail.Height = 1 + m.layout.bodyRows()
	m.clampSelection()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAdd:
		return m.handleAddKeys(msg)
	case modeEdit:
		return m.handleEditKeys(msg)
	case modeDetail:
		return m.handleDetailKeys(msg)
	case modeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
			m.mode = modeBoard
			return m, nil
		}
		if msg.String() == "q" {
			return m.quit()
		}
		return m, nil
	}
	if m.carrying {
		return m.handleCarryKeys(msg)
	}
	return m.handleBoardKeys(msg)
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Left):
		m.focus = max(m.focus-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.focus = min(m.focus+1, trashCol-1)
	case key.Matches(msg, m.keys.Up):
		m.rows[m.focus]--
	case key.Matches(msg, m.keys.Down):
		m.rows[m.focus]++
	case key.Matches(msg, m.keys.Add):
		return m.startAdd()
	case key.Matches(msg, m.keys.Edit):
		if card, _, ok := m.selectedCard(); ok {
			return m, m.startEdit(card)
		}
	case key.Matches(msg, m.keys.Grab):
		if card, lane, ok := m.selectedCard(); ok {
			m.drag.Start(card, lane)
			m.carrying = true
			m.setStatus("Carrying %q: h/j/k/l to aim, enter to drop, esc to cancel", truncate(singleLine(card.Text), 30))
			debug.Log("ui: pick up %s from %s", card.ID, lane)
		}
	case key.Matches(msg, m.keys.Trash):
		if card, lane, ok := m.selectedCard(); ok {
			return m.requestDelete(drag.PendingDelete{Card: card, From: lane})
		}
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}
	m.clampSelection()
	return m, nil
}

// handleCarryKeys moves the drop cursor over cards, the empty space at the
// end of each lane, and the trash.
func (m Model) handleCarryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelDrag("Move cancelled")
		return m, nil
	case key.Matches(msg, m.keys.Drop):
		return m.drop(m.cursorTarget())
	case key.Matches(msg, m.keys.Left):
		m.focus = max(m.focus-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.focus = min(m.focus+1, trashCol)
	case key.Matches(msg, m.keys.Up):
		if m.focus < trashCol {
			m.rows[m.focus]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.focus < trashCol {
			m.rows[m.focus]++
		}
	case msg.String() == "q":
		return m.quit()
	}
	m.clampSelection()
	m.aimAt(m.cursorTarget())
	return m, nil
}

// cursorTarget is the drop target under the keyboard cursor.
func (m Model) cursorTarget() drag.Target {
	if m.focus >= trashCol {
		return drag.TrashTarget()
	}
	lane := model.Lanes[m.focus]
	cards := m.store.State().Lane(lane)
	if r := m.rows[m.focus]; r < len(cards) {
		return drag.CardTarget(lane, cards[r].ID)
	}
	return drag.LaneTarget(lane)
}

// aimAt moves the hover highlight to t.
func (m *Model) aimAt(t drag.Target) {
	m.overTrash = t.Kind == drag.TargetTrash
	if t.Kind == drag.TargetCard && m.drag.Hovered(t.CardID) {
		return
	}
	m.drag.Leave(m.drag.HoverTargetID)
	if t.Kind == drag.TargetCard {
		m.drag.Hover(t.CardID)
	}
}

func (m Model) drop(t drag.Target) (tea.Model, tea.Cmd) {
	out := m.drag.Drop(t)
	m.carrying, m.dragMoved, m.overTrash = false, false, false

	switch {
	case out.Move != nil:
		mv := *out.Move
		if m.dispatch(mv) {
			m.setStatus("Moved %q to %s", truncate(singleLine(mv.Card.Text), 30), mv.To.Title())
		}
		m.selectCard(mv.Card.ID)
	case out.Delete != nil:
		m.selectCard(out.Delete.Card.ID)
		return m.requestDelete(*out.Delete)
	default:
		m.setStatus("Nothing to drop on")
	}
	m.clampSelection()
	return m, nil
}

func (m *Model) cancelDrag(status string) {
	card, _, ok := m.drag.Payload()
	m.drag.Cancel()
	m.carrying, m.dragMoved, m.overTrash = false, false, false
	if ok {
		m.selectCard(card.ID)
	}
	m.clampSelection()
	if status != "" {
		m.setStatus("%s", status)
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.opts.Mouse || m.mode != modeBoard || m.carrying {
		return m, nil
	}
	h := m.layout.hit(msg.X, msg.Y, m.store.State())

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if h.Input {
			return m.startAdd()
		}
		if h.Target.Kind != drag.TargetCard {
			return m, nil
		}
		m.focus, m.rows[h.Lane] = h.Lane, h.Row
		card, _ := m.store.State().Card(h.Target.CardID)
		if m.lastClickID == card.ID && m.now().Sub(m.lastClick) <= doubleClickWindow {
			m.lastClickID = ""
			m.drag.Cancel()
			return m, m.startEdit(card)
		}
		m.drag.Start(card, h.Target.Lane)
		m.dragMoved = false

	case tea.MouseActionMotion:
		if !m.drag.Active() {
			return m, nil
		}
		if h.Target.Kind != drag.TargetCard || h.Target.CardID != m.drag.DraggedCardID {
			m.dragMoved = true
		}
		m.aimAt(h.Target)

	case tea.MouseActionRelease:
		if !m.drag.Active() {
			return m, nil
		}
		if !m.dragMoved {
			// A click without movement only selects.
			m.lastClickID, m.lastClick = m.drag.DraggedCardID, m.now()
			m.drag.Cancel()
			m.overTrash = false
			return m, nil
		}
		m.lastClickID = ""
		if h.Target.Kind == drag.TargetNone {
			m.cancelDrag("Drag cancelled")
			return m, nil
		}
		return m.drop(h.Target)
	}
	return m, nil
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	m.mode = modeAdd
	m.statusMsg = ""
	m.addInput.Reset()
	return m, m.addInput.Focus()
}

func (m Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.addInput.Reset()
		m.addInput.Blur()
		m.mode = modeBoard
		return m, nil
	case "enter":
		text, ok := board.NormalizeText(m.addInput.Value())
		m.addInput.Reset()
		if !ok {
			m.addInput.Blur()
			m.mode = modeBoard
			return m, nil
		}
		m.dispatch(board.AddTask{Text: text})
		todo := m.store.State().Todo
		if len(todo) > 0 {
			m.selectCard(todo[len(todo)-1].ID)
		}
		m.setStatus("Added %q", truncate(text, 40))
		return m, nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m *Model) startEdit(card model.Card) tea.Cmd {
	m.mode = modeEdit
	m.statusMsg = ""
	m.editing = editTarget{id: card.ID, original: card.Text}
	m.editInput.SetValue(card.Text)
	m.editInput.CursorEnd()
	return m.editInput.Focus()
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.finishEdit()
		return m, nil
	case "enter":
		text, ok := board.NormalizeText(m.editInput.Value())
		lane, _, found := m.store.State().Locate(m.editing.id)
		if ok && found && text != m.editing.original {
			m.dispatch(board.EditCard{CardID: m.editing.id, From: lane, NewText: text})
			m.setStatus("Updated card")
		}
		m.finishEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

// finishEdit leaves edit mode. Without a dispatched edit the card keeps its
// original text.
func (m *Model) finishEdit() {
	m.editInput.Blur()
	m.editInput.Reset()
	m.editing = editTarget{}
	m.mode = modeBoard
}

func (m Model) requestDelete(p drag.PendingDelete) (tea.Model, tea.Cmd) {
	if !m.opts.ConfirmDeletes {
		m.applyDelete(p)
		return m, nil
	}
	m.confirm = newConfirmDialog(p, m.width)
	m.mode = modeConfirm
	return m, m.confirm.form.Init()
}

func (m *Model) applyDelete(p drag.PendingDelete) {
	a := p.Action()
	if lane, _, ok := m.store.State().Locate(p.Card.ID); ok {
		a.From = lane
	}
	if m.dispatch(a) {
		m.setStatus("🗑 Deleted %q", truncate(singleLine(p.Card.Text), 40))
	}
}

func (m *Model) copySelected() {
	card, _, ok := m.selectedCard()
	if !ok {
		return
	}
	if err := m.copyText(card.Text); err != nil {
		m.setError("❌ Clipboard error: %v", err)
		return
	}
	m.setStatus("📋 Copied %q to clipboard", truncate(singleLine(card.Text), 40))
}

func (m *Model) openDetail() {
	card, lane, ok := m.selectedCard()
	if !ok {
		m.setStatus("No card selected")
		return
	}
	content, err := m.renderDetail(card, lane)
	if err != nil {
		m.setError("Detail render failed: %v", err)
	}
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.mode = modeDetail
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Detail, m.keys.Cancel):
		m.mode = modeBoard
		return m, nil
	case msg.String() == "q":
		return m.quit()
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) applyScript(msg ScriptActionsMsg) (tea.Model, tea.Cmd) {
	applied := 0
	for _, a := range msg.Actions {
		if m.dispatch(a) {
			applied++
		}
	}
	m.reconcile()
	m.setStatus("▶ Script: %d of %d actions changed the board", applied, len(msg.Actions))
	return m, WaitForScript(m.opts.Script)
}

// reconcile drops UI state that points at cards an external change removed.
func (m *Model) reconcile() {
	s := m.store.State()
	if m.drag.Active() && !s.HasCard(m.drag.DraggedCardID) {
		m.drag.Cancel()
		m.carrying, m.dragMoved, m.overTrash = false, false, false
	}
	if m.mode == modeEdit && !s.HasCard(m.editing.id) {
		m.finishEdit()
	}
	if m.mode == modeConfirm && m.confirm != nil && !s.HasCard(m.confirm.pending.Card.ID) {
		m.confirm = nil
		m.mode = modeBoard
	}
	m.clampSelection()
}

func (m *Model) dispatch(a board.Action) bool {
	changed := m.store.Dispatch(a)
	m.clampSelection()
	return changed
}

func (m Model) selectedCard() (model.Card, model.LaneID, bool) {
	if m.focus < 0 || m.focus >= trashCol {
		return model.Card{}, "", false
	}
	lane := model.Lanes[m.focus]
	cards := m.store.State().Lane(lane)
	r := m.rows[m.focus]
	if r < 0 || r >= len(cards) {
		return model.Card{}, "", false
	}
	return cards[r], lane, true
}

func (m *Model) selectCard(id string) {
	lane, row, ok := m.store.State().Locate(id)
	if !ok {
		return
	}
	m.focus = lane.Index()
	m.rows[m.focus] = row
	m.layout.ensureVisible(m.focus, row)
}

// clampSelection keeps the cursor on an existing card. While carrying, the
// slot after the last card (the lane's empty space) is allowed too.
func (m *Model) clampSelection() {
	if !m.carrying && m.focus >= trashCol {
		m.focus = trashCol - 1
	}
	m.focus = clamp(m.focus, 0, trashCol)
	s := m.store.State()
	for i, lane := range model.Lanes {
		n := len(s.Lane(lane))
		limit := n - 1
		if m.carrying {
			limit = n
		}
		m.rows[i] = clamp(m.rows[i], 0, limit)
		m.layout.offsets[i] = clamp(m.layout.offsets[i], 0, max(n-m.layout.visible, 0))
		m.layout.ensureVisible(i, m.rows[i])
	}
}

func (m *Model) renderDetail(card model.Card, lane model.LaneID) (string, error) {
	md := detailMarkdown(card, lane, m.store.State())
	width := max(m.width-4, 20)
	if m.detailRenderer == nil || m.detailWidth != width {
		style := m.opts.MarkdownStyle
		if style == "" {
			style = "dracula"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md, fmt.Errorf("markdown renderer: %w", err)
		}
		m.detailRenderer, m.detailWidth = r, width
	}
	out, err := m.detailRenderer.Render(md)
	if err != nil {
		return md, fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func detailMarkdown(card model.Card, lane model.LaneID, s model.BoardState) string {
	_, pos, _ := s.Locate(card.ID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", singleLine(card.Text))
	fmt.Fprintf(&sb, "- **Lane:** %s\n", lane.Title())
	fmt.Fprintf(&sb, "- **Position:** %d of %d\n", pos+1, len(s.Lane(lane)))
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", card.ID)
	if strings.ContainsAny(card.Text, "\n\t") {
		fmt.Fprintf(&sb, "\n---\n\n%s\n", card.Text)
	}
	return sb.String()
}
