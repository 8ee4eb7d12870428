package selection

import "time"

// Snapshot is a single observation of the OS-wide text selection.
type Snapshot struct {
	Text string

	// Bounding rectangle of the first selected range, in virtual-screen
	// pixels. HasBounds is false when the provider had no rectangle (e.g.
	// selection scrolled out of view); the bubble then falls back to a
	// default position.
	X, Y          int
	Width, Height int
	HasBounds     bool

	ObservedAt time.Time
}

// Reader reads the focused element's current text selection.
//
// Poll returns nil when nothing is selected, the focused element exposes no
// text pattern, or the read fails transiently; the next poll tick is the
// retry. Only a broken accessibility subsystem surfaces as an error, from
// NewReader.
//
// The reader binds to the OS thread it was created on (COM apartment
// threading). Create it and poll it from the same locked goroutine.
type Reader interface {
	Poll() *Snapshot
	Close()
}

// NewReader initializes the platform accessibility subsystem and returns a
// reader bound to the calling thread.
func NewReader() (Reader, error) { return newPlatformReader() }
