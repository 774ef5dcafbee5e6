// Package event defines the input events the frame driver forwards to entities.
package event

// Kind identifies the type of an input event.
type Kind uint8

const (
	KindQuit        Kind = iota // window closed or quit key
	KindPause                   // toggle simulation updates
	KindToggleLinks             // toggle neighbour link drawing
	KindResize                  // surface size changed
	KindKey                     // any other key press
	NumKinds
)

var kindNames = [...]string{
	KindQuit:        "quit",
	KindPause:       "pause",
	KindToggleLinks: "toggle_links",
	KindResize:      "resize",
	KindKey:         "key",
}

// String returns the display name for a Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is a single input event tagged with its kind.
type Event struct {
	Kind Kind
	Key  rune // KindKey only

	// KindResize only
	Width, Height int
}

// Mask is the set of event kinds an entity reacts to.
type Mask uint64

// All accepts every event kind.
const All Mask = ^Mask(0)

// None accepts nothing.
const None Mask = 0

// MaskOf builds a mask accepting exactly the given kinds.
func MaskOf(kinds ...Kind) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// Accepts reports whether events of kind k pass the mask.
func (m Mask) Accepts(k Kind) bool {
	return m&(1<<k) != 0
}

// With returns m extended by the given kinds.
func (m Mask) With(kinds ...Kind) Mask {
	return m | MaskOf(kinds...)
}
