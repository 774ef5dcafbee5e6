package game

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pthm-cable/clusters/renderer"
)

// RunHeadless steps the simulation without a display until ctx is done,
// the population dies out, or maxTicks passes have run (0 = unlimited).
// Paint calls land in a Recorder that is cleared every frame.
func (g *Game) RunHeadless(ctx context.Context, maxTicks int) error {
	var canvas renderer.Recorder

	g.log.Info("starting headless simulation",
		zap.Int64("seed", g.seed),
		zap.Int("max_ticks", maxTicks),
		zap.Int("stats_window", int(g.collector.WindowDurationTicks())),
	)

	for {
		if err := g.Frame(ctx, nil, &canvas); err != nil {
			if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
				g.log.Info("headless run stopped", zap.Int32("tick", g.tick))
				return nil
			}
			return err
		}

		if maxTicks > 0 && int(g.tick) >= maxTicks {
			g.log.Info("max ticks reached", zap.Int32("tick", g.tick))
			return nil
		}
		if g.reg.BodyCount() == 0 {
			g.log.Info("population extinct", zap.Int32("tick", g.tick))
			return nil
		}
	}
}
