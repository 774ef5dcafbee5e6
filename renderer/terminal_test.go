package renderer

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

func glyphAt(s tcell.Screen, col, row int) rune {
	r, _, _, _ := s.GetContent(col, row)
	return r
}

func TestTerminalRectCoversCell(t *testing.T) {
	s := newSimScreen(t, 80, 24)
	term := NewTerminal(s, 800, 480)

	// World center maps to the screen center cell
	term.Rect(400, 240, 5, 5, White)

	assert.Equal(t, bodyGlyph, glyphAt(s, 40, 12))
	assert.NotEqual(t, bodyGlyph, glyphAt(s, 10, 5))
}

func TestTerminalLineIsContinuous(t *testing.T) {
	s := newSimScreen(t, 80, 24)
	term := NewTerminal(s, 800, 480)

	// Horizontal line across row 12, columns 20..60
	term.Line(200, 245, 600, 245, Red)

	for col := 20; col <= 60; col++ {
		assert.Equal(t, linkGlyph, glyphAt(s, col, 12), "col %d", col)
	}
	assert.NotEqual(t, linkGlyph, glyphAt(s, 19, 12))
	assert.NotEqual(t, linkGlyph, glyphAt(s, 61, 12))
}

func TestTerminalClear(t *testing.T) {
	s := newSimScreen(t, 80, 24)
	var canvas Canvas = NewTerminal(s, 800, 480)

	canvas.Rect(400, 240, 5, 5, White)
	canvas.Clear()
	assert.NotEqual(t, bodyGlyph, glyphAt(s, 40, 12))
}

func TestTerminalClipsOffscreen(t *testing.T) {
	s := newSimScreen(t, 80, 24)
	term := NewTerminal(s, 800, 480)

	assert.NotPanics(t, func() {
		term.Rect(-5000, -5000, 5, 5, White)
		term.Line(-5000, 240, 5000, 240, Red)
	})
}

func TestRecorderFilters(t *testing.T) {
	var rec Recorder
	rec.Rect(1, 2, 3, 4, White)
	rec.Line(0, 0, 10, 10, Red)
	rec.Rect(5, 6, 7, 8, White)

	assert.Len(t, rec.Ops, 3)
	assert.Len(t, rec.Rects(), 2)
	require.Len(t, rec.Lines(), 1)
	assert.Equal(t, 10.0, rec.Lines()[0].X2)

	rec.Reset()
	assert.Empty(t, rec.Ops)

	var canvas Canvas = &rec
	canvas.Line(0, 0, 1, 1, Red)
	canvas.Clear()
	assert.Empty(t, rec.Ops)
}
