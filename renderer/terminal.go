package renderer

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/clusters/camera"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2

const (
	bodyGlyph = '█'
	linkGlyph = '·'
)

// Terminal draws onto a tcell screen. The camera viewport is measured in
// half-cells vertically so bodies keep their proportions.
type Terminal struct {
	screen tcell.Screen
	cam    *camera.Camera
}

// NewTerminal creates a terminal surface covering the whole screen and
// zoomed so the world fits.
func NewTerminal(screen tcell.Screen, worldW, worldH float32) *Terminal {
	cols, rows := screen.Size()
	cam := camera.New(float32(cols), float32(rows*cellAspect), worldW, worldH)
	cam.Fit()
	return &Terminal{screen: screen, cam: cam}
}

// Camera returns the camera used for world-to-cell mapping.
func (t *Terminal) Camera() *camera.Camera {
	return t.cam
}

// Resize refits the camera to a new screen size.
func (t *Terminal) Resize(cols, rows int) {
	t.cam.Resize(float32(cols), float32(rows*cellAspect))
	t.cam.Fit()
}

// Clear blanks every cell.
func (t *Terminal) Clear() {
	t.screen.Clear()
}

// Rect fills every cell the rectangle covers, at least one.
func (t *Terminal) Rect(x, y, w, h float64, c color.RGBA) {
	style := tcell.StyleDefault.Foreground(toTcell(c))
	c0, r0 := t.cell(x, y)
	c1, r1 := t.cell(x+w, y+h)
	for row := r0; row <= max(r0, r1-1); row++ {
		for col := c0; col <= max(c0, c1-1); col++ {
			t.set(col, row, bodyGlyph, style)
		}
	}
}

// Line plots the segment with Bresenham's algorithm.
func (t *Terminal) Line(x1, y1, x2, y2 float64, c color.RGBA) {
	style := tcell.StyleDefault.Foreground(toTcell(c))
	col, row := t.cell(x1, y1)
	endCol, endRow := t.cell(x2, y2)

	dx := abs(endCol - col)
	dy := -abs(endRow - row)
	sx, sy := 1, 1
	if col > endCol {
		sx = -1
	}
	if row > endRow {
		sy = -1
	}
	e := dx + dy

	for {
		t.set(col, row, linkGlyph, style)
		if col == endCol && row == endRow {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			col += sx
		}
		if e2 <= dx {
			e += dx
			row += sy
		}
	}
}

// cell maps a world position to a screen cell.
func (t *Terminal) cell(x, y float64) (col, row int) {
	sx, sy := t.cam.WorldToScreen(float32(x), float32(y))
	return floor(float64(sx)), floor(float64(sy) / cellAspect)
}

// floor rounds down, absorbing float32 noise just below an integer.
func floor(v float64) int {
	return int(math.Floor(v + 1e-4))
}

// set writes a glyph if the cell is on screen.
func (t *Terminal) set(col, row int, r rune, style tcell.Style) {
	cols, rows := t.screen.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return
	}
	t.screen.SetContent(col, row, r, nil, style)
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
