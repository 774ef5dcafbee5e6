package game

import "github.com/pthm-cable/clusters/event"

// Key bindings shared by the graphics and terminal front ends.
const (
	keyPause = ' '
	keyLinks = 'l'
	keyQuit  = 'q'
)

// keyEvent maps a typed character to the event it triggers.
func keyEvent(r rune) event.Event {
	switch r {
	case keyPause:
		return event.Event{Kind: event.KindPause}
	case keyLinks, 'L':
		return event.Event{Kind: event.KindToggleLinks}
	case keyQuit, 'Q':
		return event.Event{Kind: event.KindQuit}
	}
	return event.Event{Kind: event.KindKey, Key: r}
}

// resizeEvent reports a new surface size.
func resizeEvent(w, h int) event.Event {
	return event.Event{Kind: event.KindResize, Width: w, Height: h}
}
