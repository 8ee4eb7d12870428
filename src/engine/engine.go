// Package engine is the single-threaded coordinator of the capture pipeline:
// it paces selection polling, advances the stability detector, resolves
// settled words against the index and drives the bubble.
package engine

import (
	"context"
	"image"
	"log"
	"runtime"
	"time"

	"dictyy/src/bubble"
	"dictyy/src/detector"
	"dictyy/src/index"
	"dictyy/src/selection"
	"dictyy/src/settings"
)

// DefaultPollInterval is the selection sampling period.
const DefaultPollInterval = 200 * time.Millisecond

// Presenter receives lookup results. *bubble.Bubble implements it.
type Presenter interface {
	Show(c bubble.Content, sel image.Rectangle, hasBounds bool)
	Hide()
}

// Options configures an Engine. NewReader, Index, Presenter and Prefs are
// required; zero intervals pick the defaults.
type Options struct {
	// NewReader is called on the dedicated poll goroutine, which stays
	// locked to one OS thread for the lifetime of the reader.
	NewReader       func() (selection.Reader, error)
	Index           *index.Index
	Presenter       Presenter
	Prefs           *settings.Settings
	PollInterval    time.Duration
	StabilityWindow time.Duration

	// now is injected by tests.
	now func() time.Time
}

// Engine runs the poll loop. All detector and presenter interaction happens
// on the Run goroutine; polling itself happens on one reader goroutine.
type Engine struct {
	opts      Options
	det       *detector.Detector
	pollReq   chan struct{}
	snapshots chan *selection.Snapshot
	disabled  chan struct{}
}

// New wires an engine. It also subscribes to capture toggles so the bubble
// hides as soon as capture is switched off, not on the next tick.
func New(opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	e := &Engine{
		opts:      opts,
		det:       detector.New(opts.StabilityWindow),
		pollReq:   make(chan struct{}, 1),
		snapshots: make(chan *selection.Snapshot, 1),
		disabled:  make(chan struct{}, 1),
	}
	opts.Prefs.OnCaptureChange(func(enabled bool) {
		if !enabled {
			select {
			case e.disabled <- struct{}{}:
			default:
			}
		}
	})
	return e
}

// Run blocks until ctx is cancelled. The reader is created and polled on a
// separate locked goroutine because the platform selection API has thread
// affinity; the loop never blocks on a slow poll, it just skips ticks while
// one is in flight.
func (e *Engine) Run(ctx context.Context) error {
	go e.pollLoop()
	defer close(e.pollReq)

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	inFlight := false
	for {
		select {
		case <-ctx.Done():
			e.apply(e.det.Reset())
			return ctx.Err()

		case <-e.disabled:
			e.apply(e.det.Reset())

		case <-ticker.C:
			if !e.opts.Prefs.CaptureEnabled() {
				e.apply(e.det.Reset())
				continue
			}
			if inFlight {
				continue
			}
			inFlight = true
			e.pollReq <- struct{}{}

		case snap := <-e.snapshots:
			inFlight = false
			if !e.opts.Prefs.CaptureEnabled() {
				continue
			}
			// The debounce window is measured between observation times, so
			// a delayed channel handoff cannot stretch it.
			at := e.opts.now()
			if snap != nil && !snap.ObservedAt.IsZero() {
				at = snap.ObservedAt
			}
			e.apply(e.det.Observe(snap, at))
		}
	}
}

func (e *Engine) pollLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	reader, err := e.opts.NewReader()
	if err != nil {
		log.Printf("Engine: selection reader unavailable: %v", err)
		for range e.pollReq {
			e.snapshots <- nil
		}
		return
	}
	defer reader.Close()

	for range e.pollReq {
		snap := reader.Poll()
		if snap != nil && snap.ObservedAt.IsZero() {
			snap.ObservedAt = time.Now()
		}
		e.snapshots <- snap
	}
}

func (e *Engine) apply(r detector.Result) {
	switch r.Event {
	case detector.EventLookup:
		c := bubble.Content{Word: r.Word}
		if e.opts.Index != nil {
			if a, ok := e.opts.Index.Resolve(r.Word); ok {
				c.Word = a.Word
				c.Phonetic = a.Phonetic
				c.Definition = a.BestDefinition()
				c.Found = true
			}
		}
		log.Printf("Engine: %q settled, found=%v", r.Word, c.Found)
		sel, hasBounds := snapshotRect(r.Snapshot)
		e.opts.Presenter.Show(c, sel, hasBounds)

	case detector.EventClear:
		e.opts.Presenter.Hide()
	}
}

func snapshotRect(snap *selection.Snapshot) (image.Rectangle, bool) {
	if snap == nil || !snap.HasBounds {
		return image.Rectangle{}, false
	}
	return image.Rect(snap.X, snap.Y, snap.X+snap.Width, snap.Y+snap.Height), true
}
