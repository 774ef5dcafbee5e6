package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clusters/event"
)

// pollInput collects this frame's events from raylib plus any queued by
// the HUD during the previous frame.
func (g *Game) pollInput() []event.Event {
	events := g.pending
	g.pending = nil

	if rl.WindowShouldClose() {
		events = append(events, event.Event{Kind: event.KindQuit})
	}

	// Window resize propagation
	if ev, ok := g.handleResize(); ok {
		events = append(events, ev)
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
		events = append(events, keyEvent(rune(c)))
	}

	g.handleCameraInput()
	return events
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() (event.Event, bool) {
	if !rl.IsWindowResized() {
		return event.Event{}, false
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return event.Event{}, false
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
	return resizeEvent(int(w), int(h)), true
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
