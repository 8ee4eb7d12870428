package engine

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"dictyy/src/bubble"
	"dictyy/src/index"
	"dictyy/src/selection"
	"dictyy/src/settings"
)

// fakeReader serves whatever the test script currently says is selected.
type fakeReader struct {
	mu   sync.Mutex
	snap *selection.Snapshot
}

func (r *fakeReader) set(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if text == "" {
		r.snap = nil
		return
	}
	r.snap = &selection.Snapshot{
		Text: text,
		X:    400, Y: 300, Width: 80, Height: 20,
		HasBounds: true,
	}
}

func (r *fakeReader) Poll() *selection.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return nil
	}
	cp := *r.snap
	return &cp
}

func (r *fakeReader) Close() {}

type fakePresenter struct {
	shows chan bubble.Content
	hides chan struct{}
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{
		shows: make(chan bubble.Content, 16),
		hides: make(chan struct{}, 16),
	}
}

func (p *fakePresenter) Show(c bubble.Content, sel image.Rectangle, hasBounds bool) {
	p.shows <- c
}

func (p *fakePresenter) Hide() {
	select {
	case p.hides <- struct{}{}:
	default:
	}
}

func testIndex() *index.Index {
	return index.New([]index.WordAbstract{
		{Word: "ghost", Phonetic: "/ɡoʊst/", MainDef: "n. 鬼"},
		{Word: "walk", MainDef: "v. 走"},
	})
}

func startEngine(t *testing.T, reader *fakeReader, prefs *settings.Settings) (*fakePresenter, context.CancelFunc) {
	t.Helper()
	presenter := newFakePresenter()
	e := New(Options{
		NewReader:       func() (selection.Reader, error) { return reader, nil },
		Index:           testIndex(),
		Presenter:       presenter,
		Prefs:           prefs,
		PollInterval:    5 * time.Millisecond,
		StabilityWindow: 25 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return presenter, cancel
}

func waitShow(t *testing.T, p *fakePresenter) bubble.Content {
	t.Helper()
	select {
	case c := <-p.shows:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no Show within deadline")
		return bubble.Content{}
	}
}

func waitHide(t *testing.T, p *fakePresenter) {
	t.Helper()
	select {
	case <-p.hides:
	case <-time.After(2 * time.Second):
		t.Fatal("no Hide within deadline")
	}
}

func TestStableSelectionShowsBubbleOnce(t *testing.T) {
	reader := &fakeReader{}
	reader.set("ghost")
	presenter, _ := startEngine(t, reader, settings.New(true))

	c := waitShow(t, presenter)
	if !c.Found || c.Word != "ghost" || c.Definition != "n. 鬼" {
		t.Errorf("Show content = %+v", c)
	}

	// The same settled selection must not re-announce.
	select {
	case c := <-presenter.shows:
		t.Errorf("unexpected second Show: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnknownWordShowsMissMarker(t *testing.T) {
	reader := &fakeReader{}
	reader.set("qwertyzx")
	presenter, _ := startEngine(t, reader, settings.New(true))

	c := waitShow(t, presenter)
	if c.Found {
		t.Errorf("Show content = %+v, want miss", c)
	}
	if c.Word != "qwertyzx" {
		t.Errorf("Word = %q", c.Word)
	}
}

func TestInflectedWordResolvesToHeadword(t *testing.T) {
	reader := &fakeReader{}
	reader.set("walking")
	presenter, _ := startEngine(t, reader, settings.New(true))

	c := waitShow(t, presenter)
	if !c.Found || c.Word != "walk" {
		t.Errorf("Show content = %+v, want headword walk", c)
	}
}

func TestClearedSelectionHidesBubble(t *testing.T) {
	reader := &fakeReader{}
	reader.set("ghost")
	presenter, _ := startEngine(t, reader, settings.New(true))

	waitShow(t, presenter)
	reader.set("")
	waitHide(t, presenter)
}

func TestDisableHidesAndStopsLookups(t *testing.T) {
	reader := &fakeReader{}
	reader.set("ghost")
	prefs := settings.New(true)
	presenter, _ := startEngine(t, reader, prefs)

	waitShow(t, presenter)
	prefs.SetCaptureEnabled(false)
	waitHide(t, presenter)

	// A fresh stable selection while disabled must not surface.
	reader.set("walk")
	select {
	case c := <-presenter.shows:
		t.Errorf("Show while disabled: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

// The stability window must be measured between snapshot observation times,
// not whatever the loop clock says at handoff. With the loop clock frozen,
// a steady selection still settles because the snapshots carry real
// timestamps.
func TestDebounceFollowsSnapshotTimestamps(t *testing.T) {
	reader := &fakeReader{}
	reader.set("ghost")
	prefs := settings.New(true)

	presenter := newFakePresenter()
	frozen := time.Now()
	e := New(Options{
		NewReader:       func() (selection.Reader, error) { return reader, nil },
		Index:           testIndex(),
		Presenter:       presenter,
		Prefs:           prefs,
		PollInterval:    5 * time.Millisecond,
		StabilityWindow: 25 * time.Millisecond,
		now:             func() time.Time { return frozen },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	c := waitShow(t, presenter)
	if !c.Found || c.Word != "ghost" {
		t.Errorf("Show content = %+v", c)
	}
}

// An index that failed to load leaves capture locked off; flipping the
// switch back on afterwards must not bring the pipeline up, not even for
// miss-marker bubbles.
func TestLockedCaptureIgnoresReenable(t *testing.T) {
	reader := &fakeReader{}
	reader.set("ghost")
	prefs := settings.New(false)
	prefs.LockCaptureOff()

	presenter := newFakePresenter()
	e := New(Options{
		NewReader:       func() (selection.Reader, error) { return reader, nil },
		Index:           nil,
		Presenter:       presenter,
		Prefs:           prefs,
		PollInterval:    5 * time.Millisecond,
		StabilityWindow: 25 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	prefs.SetCaptureEnabled(true)
	select {
	case c := <-presenter.shows:
		t.Fatalf("capture ran after being locked off: %+v", c)
	case <-time.After(250 * time.Millisecond):
	}
}

func TestChurningSelectionNeverSurfaces(t *testing.T) {
	reader := &fakeReader{}
	presenter, _ := startEngine(t, reader, settings.New(true))

	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	deadline := time.After(250 * time.Millisecond)
	i := 0
	for {
		select {
		case c := <-presenter.shows:
			t.Fatalf("Show fired on churning text: %+v", c)
		case <-deadline:
			return
		case <-time.After(10 * time.Millisecond):
			reader.set(words[i%len(words)])
			i++
		}
	}
}
