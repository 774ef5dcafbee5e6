package game

import (
	"fmt"

	"github.com/pthm-cable/clusters/telemetry"
)

// phaseLines formats per-phase frame time shares, grouped by category.
func (g *Game) phaseLines(perf telemetry.PerfStats) []string {
	var lines []string
	for _, cat := range g.phases.Categories() {
		lines = append(lines, fmt.Sprintf("[%s]", cat))
		for _, info := range g.phases.ByCategory(cat) {
			lines = append(lines, fmt.Sprintf("  %-10s %5.1f%%", info.Name, perf.PhasePct[info.ID]))
		}
	}
	return lines
}
