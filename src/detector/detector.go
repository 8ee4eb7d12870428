// Package detector decides when a polled text selection has settled long
// enough to be looked up. It is a pure state machine: time and selection
// samples are injected, no timers run here, and all state is owned by one
// Detector advanced from a single goroutine.
package detector

import (
	"strings"
	"time"

	"dictyy/src/selection"
)

// State of the debounce machine.
type State int

const (
	// Idle: no candidate tracked.
	Idle State = iota
	// Pending: a valid candidate was observed and the debounce window runs.
	Pending
	// Settled: the candidate survived the window and has been announced.
	Settled
)

// Event tells the engine what to do after a transition.
type Event int

const (
	// EventNone: nothing to do this tick.
	EventNone Event = iota
	// EventLookup: the candidate settled; look it up and show the bubble.
	EventLookup
	// EventClear: the selection went away or changed; hide the bubble.
	EventClear
)

// Result of one Observe call. Word and Snapshot are set for EventLookup.
type Result struct {
	Event    Event
	Word     string
	Snapshot *selection.Snapshot
}

// DefaultWindow is the stability window: long enough to filter selections
// still being dragged out, short enough to feel immediate.
const DefaultWindow = 500 * time.Millisecond

// Detector tracks at most one candidate at a time.
type Detector struct {
	window        time.Duration
	state         State
	candidate     string
	firstSeen     time.Time
	lastAnnounced string
}

// New creates a detector; window <= 0 selects DefaultWindow.
func New(window time.Duration) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Detector{window: window}
}

// State exposes the current machine state for logging and tests.
func (d *Detector) State() State { return d.state }

// Observe folds one poll sample into the machine. Elapsed time is computed
// from the injected now, never from tick counts, so slow or missed ticks
// cannot stretch the debounce window.
func (d *Detector) Observe(snap *selection.Snapshot, now time.Time) Result {
	if snap == nil {
		return d.Reset()
	}
	text := strings.TrimSpace(snap.Text)
	if !ValidCandidate(text) {
		return d.Reset()
	}

	if d.state == Idle || !strings.EqualFold(text, d.candidate) {
		wasShowing := d.lastAnnounced != "" && !strings.EqualFold(text, d.lastAnnounced)
		d.state = Pending
		d.candidate = text
		d.firstSeen = now
		if wasShowing {
			// A different word is being selected; the old bubble is stale.
			d.lastAnnounced = ""
			return Result{Event: EventClear}
		}
		return Result{}
	}

	if d.state == Pending && now.Sub(d.firstSeen) >= d.window {
		d.state = Settled
		if !strings.EqualFold(text, d.lastAnnounced) {
			d.lastAnnounced = text
			return Result{Event: EventLookup, Word: text, Snapshot: snap}
		}
	}
	// Settled and unchanged: idempotent, no re-announce.
	return Result{}
}

// Reset drops the candidate, as on cleared/invalid selection or feature
// disable. Emits EventClear when a bubble may be visible.
func (d *Detector) Reset() Result {
	wasAnnounced := d.lastAnnounced != ""
	d.state = Idle
	d.candidate = ""
	d.firstSeen = time.Time{}
	d.lastAnnounced = ""
	if wasAnnounced {
		return Result{Event: EventClear}
	}
	return Result{}
}

const maxCandidateLen = 50

// ValidCandidate accepts a single word of 1..50 ASCII letters. Hyphen and
// apostrophe are allowed only between two letters (never leading, trailing,
// or doubled), so "mother-in-law" and "don't" pass while "-foo", "it's-",
// digits, CJK and whitespace-bearing spans are all rejected.
func ValidCandidate(text string) bool {
	if len(text) == 0 || len(text) > maxCandidateLen {
		return false
	}
	hasLetter := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isASCIILetter(c):
			hasLetter = true
		case c == '-' || c == '\'':
			if i == 0 || i == len(text)-1 {
				return false
			}
			if !isASCIILetter(text[i-1]) || !isASCIILetter(text[i+1]) {
				return false
			}
		default:
			return false
		}
	}
	return hasLetter
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
