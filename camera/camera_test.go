package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Should be centered on world
	assert.Equal(t, float32(1280), cam.X)
	assert.Equal(t, float32(720), cam.Y)
	assert.Equal(t, float32(1.0), cam.Zoom)
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(1280, 720)
	assert.InDelta(t, 640, sx, 0.01)
	assert.InDelta(t, 360, sy, 0.01)
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.7)
	cam.Pan(-120, 45)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		assert.InDelta(t, tc.sx, sx, 0.01)
		assert.InDelta(t, tc.sy, sy, 0.01)
	}
}

func TestPanClampsToWorld(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.X = 100

	// Panning past the left edge stops at the edge
	cam.Pan(-200, 0)
	assert.Equal(t, float32(0), cam.X)

	cam.Pan(10000, 10000)
	assert.Equal(t, float32(2560), cam.X)
	assert.Equal(t, float32(1440), cam.Y)
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Fitting zoom is min(1280/2560, 720/1440) = 0.5; MinZoom allows half of that
	assert.InDelta(t, 0.25, cam.MinZoom, 0.0001)

	cam.SetZoom(0.1) // Below min
	assert.InDelta(t, 0.25, cam.Zoom, 0.0001)

	cam.SetZoom(10.0) // Above max
	assert.Equal(t, float32(4.0), cam.Zoom)
}

func TestFitShowsWholeWorld(t *testing.T) {
	// Asymmetric world/viewport ratios
	cam := New(800, 600, 1600, 800)
	cam.Pan(300, 300)
	cam.Fit()

	// min(800/1600, 600/800) = 0.5
	assert.InDelta(t, 0.5, cam.Zoom, 0.001)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	assert.LessOrEqual(t, minX, float32(0))
	assert.LessOrEqual(t, minY, float32(0))
	assert.GreaterOrEqual(t, maxX, float32(1600))
	assert.GreaterOrEqual(t, maxY, float32(800))
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Visible range in world coords: (640, 360) to (1920, 1080)
	assert.True(t, cam.IsVisible(1280, 720, 10), "center should be visible")
	assert.False(t, cam.IsVisible(2400, 1300, 10), "far point should not be visible")
	assert.True(t, cam.IsVisible(600, 720, 100), "edge point with large margin should be visible")
}

func TestResizeRaisesZoomToMin(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(cam.MinZoom)

	cam.Resize(2560, 1440)

	// Fitting zoom is now 1.0, so MinZoom becomes 0.5
	assert.InDelta(t, 0.5, cam.MinZoom, 0.0001)
	assert.InDelta(t, 0.5, cam.Zoom, 0.0001)
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.X = 500
	cam.Y = 500
	cam.Zoom = 2.5

	cam.Reset()

	assert.Equal(t, float32(1280), cam.X)
	assert.Equal(t, float32(720), cam.Y)
	assert.Equal(t, float32(1.0), cam.Zoom)
}
