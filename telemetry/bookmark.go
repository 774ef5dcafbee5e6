package telemetry

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction   BookmarkType = "extinction"
	BookmarkCrash        BookmarkType = "population_crash"
	BookmarkBoom         BookmarkType = "population_boom"
	BookmarkStable       BookmarkType = "stable_clusters"
	BookmarkOvercrowding BookmarkType = "overcrowding"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(log *zap.Logger) {
	log.Info("bookmark",
		zap.String("type", string(b.Type)),
		zap.Int32("tick", b.Tick),
		zap.String("description", b.Description),
	)
}

// BookmarkDetector detects interesting moments in the population history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         int  // peak body count since the last crash
	extinct            bool // population already reported empty
	stableWindowsCount int  // consecutive windows with a steady population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stability detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Extinction: population reached zero
	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Crash: dropped >30% from recent peak
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Boom: more than double the rolling average
		if b := bd.checkBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Overcrowding: crowded culls dominate the window
		if b := bd.checkOvercrowding(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable: low variance over 5 windows
		if b := bd.checkStable(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Update history
	bd.addToHistory(stats)

	if stats.Bodies > bd.recentPeak {
		bd.recentPeak = stats.Bodies
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Bodies > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population died out after %d culls this window", stats.Culled()),
	}
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 || stats.Bodies == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Bodies)/float64(bd.recentPeak)
	if dropPercent > 0.30 && stats.Bodies < bd.recentPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Bodies

		return &Bookmark{
			Type:        BookmarkCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Bodies),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.Bodies)
	}
	avg := stat.Mean(counts, nil)
	if avg == 0 {
		return nil
	}

	if float64(stats.Bodies) > avg*2.0 && stats.Bodies >= 20 {
		return &Bookmark{
			Type:        BookmarkBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population %d is %.1fx average (%.1f)", stats.Bodies, float64(stats.Bodies)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkOvercrowding(stats WindowStats) *Bookmark {
	if stats.CulledCrowded < 10 || stats.CulledCrowded <= stats.CulledIsolated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkOvercrowding,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d overcrowded culls vs %d isolated", stats.CulledCrowded, stats.CulledIsolated),
	}
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Bodies < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	// Low variance over the latest windows: coefficient of variation < 20%
	recent := history[len(history)-4:]
	counts := make([]float64, len(recent))
	for i, h := range recent {
		counts[i] = float64(h.Bodies)
	}
	mean, variance := stat.PopMeanVariance(counts, nil)

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStable,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population around %d bodies over 5+ windows", stats.Bodies),
		}
	}
	return nil
}
