package tiling

import "github.com/1broseidon/wallboard/internal/platform"

// Slots is the number of panels in the fixed 2x2 layout.
const Slots = 4

// Quadrants splits monitor into a 2x2 grid in slot order: top-left,
// top-right, bottom-left, bottom-right. gapSize pixels separate the cells
// and the monitor edges.
func Quadrants(monitor platform.Rect, gapSize int) [Slots]platform.Rect {
	if gapSize < 0 {
		gapSize = 0
	}

	// Gaps: one before each column and one after the last.
	cellWidth := (monitor.Width - 3*gapSize) / 2
	cellHeight := (monitor.Height - 3*gapSize) / 2
	if cellWidth < 1 {
		cellWidth = 1
	}
	if cellHeight < 1 {
		cellHeight = 1
	}

	var positions [Slots]platform.Rect
	for i := 0; i < Slots; i++ {
		row := i / 2
		col := i % 2

		positions[i] = platform.Rect{
			X:      monitor.X + gapSize + col*(cellWidth+gapSize),
			Y:      monitor.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions
}
