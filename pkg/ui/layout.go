package ui

import (
	"github.com/vanderheijden86/laneboard/pkg/drag"
	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Screen rows. The renderer and the mouse hit-test both read these, so a
// click always lands on the card that was drawn there.
const (
	titleRow   = 0
	inputRow   = 1
	headerRow  = 2
	cardTop    = 3
	cardHeight = 3
	footerRows = 1

	trashWidth = 9
	// trashCol is the focus index of the trash column, right of the lanes.
	trashCol = len(model.Lanes)
)

// layout maps screen cells to board positions.
type layout struct {
	width     int
	height    int
	laneWidth int
	visible   int
	offsets   [trashCol]int
}

func newLayout(width, height, minLaneWidth int) layout {
	lw := (width - trashWidth - len(model.Lanes)) / len(model.Lanes)
	if lw < minLaneWidth {
		lw = minLaneWidth
	}
	l := layout{width: width, height: height, laneWidth: lw}
	l.visible = max(l.bodyRows()/cardHeight, 1)
	return l
}

// bodyRows is the number of rows below the lane headers.
func (l layout) bodyRows() int {
	return max(l.height-cardTop-footerRows, cardHeight)
}

// laneX returns the first column of lane i. A one-cell separator follows
// every lane.
func (l layout) laneX(i int) int {
	return i * (l.laneWidth + 1)
}

func (l layout) trashX() int {
	return l.laneX(trashCol)
}

// column returns the lane index under x, trashCol for the trash, or -1 for
// a separator or anything outside the board.
func (l layout) column(x int) int {
	for i := range trashCol {
		if x >= l.laneX(i) && x < l.laneX(i)+l.laneWidth {
			return i
		}
	}
	if x >= l.trashX() && x < l.trashX()+trashWidth {
		return trashCol
	}
	return -1
}

// ensureVisible scrolls lane so that row is inside the window.
func (l *layout) ensureVisible(lane, row int) {
	if lane < 0 || lane >= trashCol {
		return
	}
	off := l.offsets[lane]
	if row < off {
		off = row
	}
	if row >= off+l.visible {
		off = row - l.visible + 1
	}
	l.offsets[lane] = max(off, 0)
}

// hitResult is what lies under a screen cell.
type hitResult struct {
	Target drag.Target
	// Lane is the column index, trashCol, or -1.
	Lane int
	// Row is the card's index in its lane, or -1.
	Row int
	// Input is set for the add-task line.
	Input bool
}

// hit resolves the cell (x, y) against board s.
func (l layout) hit(x, y int, s model.BoardState) hitResult {
	res := hitResult{Lane: -1, Row: -1}
	if y == inputRow {
		res.Input = true
		return res
	}
	if y < headerRow || y >= l.height-footerRows {
		return res
	}

	col := l.column(x)
	res.Lane = col
	switch {
	case col < 0:
		return res
	case col == trashCol:
		res.Target = drag.TrashTarget()
		return res
	}

	lane := model.Lanes[col]
	res.Target = drag.LaneTarget(lane)
	if y < cardTop {
		return res
	}
	slot := (y - cardTop) / cardHeight
	if slot >= l.visible {
		return res
	}
	cards := s.Lane(lane)
	if idx := l.offsets[col] + slot; idx < len(cards) {
		res.Row = idx
		res.Target = drag.CardTarget(lane, cards[idx].ID)
	}
	return res
}
