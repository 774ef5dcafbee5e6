package renderer

import "image/color"

// OpKind distinguishes recorded draw calls.
type OpKind uint8

const (
	OpRect OpKind = iota
	OpLine
)

// Op is one recorded draw call. For rects X2/Y2 hold width and height.
type Op struct {
	Kind           OpKind
	X1, Y1, X2, Y2 float64
	Color          color.RGBA
}

// Recorder is a Surface that keeps every draw call in order.
// Headless runs and tests paint into it.
type Recorder struct {
	Ops []Op
}

// Rect records a filled rectangle.
func (r *Recorder) Rect(x, y, w, h float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, X1: x, Y1: y, X2: w, Y2: h, Color: c})
}

// Line records a line segment.
func (r *Recorder) Line(x1, y1, x2, y2 float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c})
}

// Reset clears recorded calls, keeping capacity.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Clear drops the previous frame's calls.
func (r *Recorder) Clear() {
	r.Reset()
}

// Rects returns the recorded rectangles.
func (r *Recorder) Rects() []Op {
	return r.filter(OpRect)
}

// Lines returns the recorded lines.
func (r *Recorder) Lines() []Op {
	return r.filter(OpLine)
}

func (r *Recorder) filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
