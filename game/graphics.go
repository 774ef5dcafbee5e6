package game

import (
	"context"
	"errors"
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/pthm-cable/clusters/camera"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/renderer"
)

// HUD layout
const (
	hudX          = 10
	hudY          = 10
	hudFontSize   = 16
	hudLineHeight = 20
	buttonWidth   = 110
	buttonHeight  = 26
)

// RunGraphics opens a window and runs frames until it is closed, a quit
// key is pressed, ctx is done, or maxTicks passes have run (0 = unlimited).
func (g *Game) RunGraphics(ctx context.Context, maxTicks int) error {
	sc := g.cfg.Screen
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(sc.Width), int32(sc.Height), sc.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(sc.TargetFPS))

	g.screenWidth = float32(sc.Width)
	g.screenHeight = float32(sc.Height)
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.screenWidth, g.screenHeight)
	canvas := renderer.NewRaylib(g.camera)

	g.log.Info("starting graphics simulation",
		zap.Int64("seed", g.seed),
		zap.Int("width", sc.Width),
		zap.Int("height", sc.Height),
	)

	for {
		events := g.pollInput()

		rl.BeginDrawing()
		err := g.Frame(ctx, events, canvas)
		if err == nil {
			g.drawHUD()
		}
		rl.EndDrawing()
		g.perfCollector.RecordFrame()

		switch {
		case errors.Is(err, ErrQuit), errors.Is(err, context.Canceled):
			g.log.Info("graphics run stopped", zap.Int32("tick", g.tick))
			return nil
		case err != nil:
			return err
		}

		if maxTicks > 0 && int(g.tick) >= maxTicks {
			g.log.Info("max ticks reached", zap.Int32("tick", g.tick))
			return nil
		}
	}
}

// drawHUD draws the status panel and control buttons. Button clicks are
// queued as events for the next frame so they pass through the event pass.
func (g *Game) drawHUD() {
	last := g.ctrl.LastPass()
	lines := []string{
		fmt.Sprintf("Tick %d  FPS %d", g.tick, rl.GetFPS()),
		fmt.Sprintf("Bodies %d  Pairs %d", g.reg.BodyCount(), last.Pairs),
		fmt.Sprintf("Spawned %d  Culled %d/%d", last.Spawned, last.CulledIsolated, last.CulledCrowded),
	}

	lines = append(lines, g.phaseLines(g.perfCollector.Stats())...)

	panelH := int32(len(lines)*hudLineHeight + buttonHeight + 3*hudY)
	rl.DrawRectangle(hudX-5, hudY-5, 2*buttonWidth+20, panelH, rl.Fade(rl.Black, 0.6))

	y := int32(hudY)
	for _, line := range lines {
		rl.DrawText(line, hudX, y, hudFontSize, rl.RayWhite)
		y += hudLineHeight
	}
	y += hudY / 2

	pauseLabel := "Pause"
	if g.paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: hudX, Y: float32(y), Width: buttonWidth, Height: buttonHeight}, pauseLabel) {
		g.pending = append(g.pending, event.Event{Kind: event.KindPause})
	}

	linksLabel := "Hide links"
	if !g.LinksVisible() {
		linksLabel = "Show links"
	}
	if gui.Button(rl.Rectangle{X: hudX + buttonWidth + 10, Y: float32(y), Width: buttonWidth, Height: buttonHeight}, linksLabel) {
		g.pending = append(g.pending, event.Event{Kind: event.KindToggleLinks})
	}
}
