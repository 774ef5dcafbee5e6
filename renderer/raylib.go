package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clusters/camera"
)

// Raylib draws onto the current raylib frame through a camera.
// Calls must happen between rl.BeginDrawing and rl.EndDrawing.
type Raylib struct {
	cam *camera.Camera
}

// NewRaylib creates a raylib surface viewing the world through cam.
func NewRaylib(cam *camera.Camera) *Raylib {
	return &Raylib{cam: cam}
}

// Clear fills the frame with black.
func (s *Raylib) Clear() {
	rl.ClearBackground(rl.Black)
}

// Rect draws a filled rectangle, scaled by the camera zoom.
func (s *Raylib) Rect(x, y, w, h float64, c color.RGBA) {
	if !s.cam.IsVisible(float32(x), float32(y), float32(w+h)) {
		return
	}
	sx, sy := s.cam.WorldToScreen(float32(x), float32(y))
	size := rl.Vector2{X: float32(w) * s.cam.Zoom, Y: float32(h) * s.cam.Zoom}
	rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, size, rl.NewColor(c.R, c.G, c.B, c.A))
}

// Line draws a one pixel line segment.
func (s *Raylib) Line(x1, y1, x2, y2 float64, c color.RGBA) {
	sx1, sy1 := s.cam.WorldToScreen(float32(x1), float32(y1))
	sx2, sy2 := s.cam.WorldToScreen(float32(x2), float32(y2))
	rl.DrawLineV(rl.Vector2{X: sx1, Y: sy1}, rl.Vector2{X: sx2, Y: sy2}, rl.NewColor(c.R, c.G, c.B, c.A))
}
