package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/renderer"
)

// inputBuffer bounds events queued between two frames.
const inputBuffer = 100

// RunTerminal runs the simulation in the terminal until a quit key, ctx
// cancellation, or maxTicks passes (0 = unlimited).
func (g *Game) RunTerminal(ctx context.Context, maxTicks int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer screen.Fini()

	return g.runTerminal(ctx, screen, maxTicks)
}

// runTerminal drives frames on an initialized screen. One goroutine polls
// tcell events into a channel; the frame loop drains it once per tick so
// entity state stays on a single goroutine.
func (g *Game) runTerminal(ctx context.Context, screen tcell.Screen, maxTicks int) error {
	sc := g.cfg.Screen
	canvas := renderer.NewTerminal(screen, float32(sc.Width), float32(sc.Height))
	input := make(chan event.Event, inputBuffer)

	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil || ctx.Err() != nil {
				return nil
			}
			if _, ok := ev.(*tcell.EventInterrupt); ok {
				return nil
			}
			e, ok := translateTerminalEvent(ev)
			if !ok {
				continue
			}
			select {
			case input <- e:
			case <-ctx.Done():
				return nil
			}
		}
	})

	eg.Go(func() error {
		defer func() {
			cancel()
			// Wake the poller; it also exits on ctx once it reads the next event
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		}()
		return g.terminalLoop(ctx, screen, canvas, input, maxTicks)
	})

	return eg.Wait()
}

func (g *Game) terminalLoop(ctx context.Context, screen tcell.Screen, canvas *renderer.Terminal, input <-chan event.Event, maxTicks int) error {
	ticker := time.NewTicker(frameInterval(g.cfg.Screen.TargetFPS))
	defer ticker.Stop()

	g.log.Info("starting terminal simulation", zap.Int64("seed", g.seed), zap.Int("max_ticks", maxTicks))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		events := drainEvents(input)
		for _, ev := range events {
			if ev.Kind == event.KindResize {
				canvas.Resize(ev.Width, ev.Height)
				screen.Sync()
			}
		}

		err := g.Frame(ctx, events, canvas)
		g.drawStatusLine(screen)
		screen.Show()
		g.perfCollector.RecordFrame()

		switch {
		case errors.Is(err, ErrQuit), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return err
		}
		if maxTicks > 0 && int(g.tick) >= maxTicks {
			return nil
		}
	}
}

// translateTerminalEvent maps tcell input to simulation events.
func translateTerminalEvent(ev tcell.Event) (event.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return event.Event{Kind: event.KindQuit}, true
		case tcell.KeyRune:
			return keyEvent(ev.Rune()), true
		}
	case *tcell.EventResize:
		w, h := ev.Size()
		return resizeEvent(w, h), true
	}
	return event.Event{}, false
}

// drainEvents takes every event queued so far without blocking.
func drainEvents(input <-chan event.Event) []event.Event {
	var events []event.Event
	for {
		select {
		case ev := <-input:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// drawStatusLine writes tick and population counts on the top row.
func (g *Game) drawStatusLine(screen tcell.Screen) {
	last := g.ctrl.LastPass()
	status := fmt.Sprintf(" tick %d  bodies %d  pairs %d  +%d -%d ", g.tick, g.reg.BodyCount(),
		last.Pairs, last.Spawned, last.Culled())
	if g.paused {
		status += "[paused] "
	}

	style := tcell.StyleDefault.Reverse(true)
	cols, _ := screen.Size()
	for i, r := range []rune(status) {
		if i >= cols {
			break
		}
		screen.SetContent(i, 0, r, nil, style)
	}
}
