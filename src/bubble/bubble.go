// Package bubble shows the small transient definition popup next to the
// current text selection. The window is topmost and never takes focus, so
// it can appear over whatever application the selection lives in without
// interrupting typing or scrolling.
package bubble

import (
	"fmt"
	"image"
)

// Bubble dimensions and spacing in pixels.
const (
	Width  = 320
	Height = 150

	// gap between the selection rectangle and the bubble edge.
	gap = 10
	// margin kept from the display edges.
	margin = 10
)

// Content is one rendered lookup result.
type Content struct {
	Word       string
	Phonetic   string
	Definition string
	// Found is false when the word resolved to no entry; the bubble still
	// appears with a miss marker so the user knows the capture worked.
	Found bool
}

func (c Content) header() string {
	if c.Phonetic != "" {
		return fmt.Sprintf("%s  %s", c.Word, c.Phonetic)
	}
	return c.Word
}

func (c Content) body() string {
	if !c.Found {
		return "No definition found"
	}
	return c.Definition
}

// Place computes the bubble's top-left corner. Preferred spot is gap pixels
// below the selection's bottom-left; when that would run off the bottom of
// the display the bubble flips to above the selection. Either way the result
// is clamped margin pixels inside the display bounds, so the bubble is
// always fully visible.
func Place(sel image.Rectangle, display image.Rectangle) image.Point {
	x := sel.Min.X
	y := sel.Max.Y + gap
	if y+Height > display.Max.Y-margin {
		y = sel.Min.Y - gap - Height
	}

	if x+Width > display.Max.X-margin {
		x = display.Max.X - margin - Width
	}
	if x < display.Min.X+margin {
		x = display.Min.X + margin
	}
	if y+Height > display.Max.Y-margin {
		y = display.Max.Y - margin - Height
	}
	if y < display.Min.Y+margin {
		y = display.Min.Y + margin
	}
	return image.Point{X: x, Y: y}
}

// window is the platform side: a single reusable popup window.
type window interface {
	show(c Content, x, y int)
	hide()
	close()
}

// Bubble owns the popup window. Methods may be called from any goroutine;
// the platform window serializes onto its own UI thread.
type Bubble struct {
	win window
}

// New creates the popup window. onDetail is invoked with the shown word when
// the user clicks the bubble, asking for the full dictionary view.
func New(onDetail func(word string)) (*Bubble, error) {
	win, err := newPlatformWindow(onDetail)
	if err != nil {
		return nil, fmt.Errorf("create bubble window: %w", err)
	}
	return &Bubble{win: win}, nil
}

// Show positions the bubble next to sel and displays c. When the selection
// carried no usable bounds (hasBounds false) the bubble falls back to the
// lower-left corner of the primary display.
func (b *Bubble) Show(c Content, sel image.Rectangle, hasBounds bool) {
	var pos image.Point
	if hasBounds {
		pos = Place(sel, displayBoundsAt(image.Point{X: sel.Min.X, Y: sel.Min.Y}))
	} else {
		d := primaryDisplayBounds()
		pos = image.Point{X: d.Min.X + 2*margin, Y: d.Max.Y - Height - 2*margin}
	}
	b.win.show(c, pos.X, pos.Y)
}

// Hide removes the bubble without destroying the window.
func (b *Bubble) Hide() { b.win.hide() }

// Close tears the window down. The bubble is unusable afterwards.
func (b *Bubble) Close() { b.win.close() }
