package bubble

import (
	"image"

	"github.com/kbinani/screenshot"
)

// fallbackBounds is used when display enumeration fails, which should only
// happen in headless test environments.
var fallbackBounds = image.Rect(0, 0, 1920, 1080)

// displayBoundsAt returns the bounds of the display containing p, so the
// bubble stays on the monitor the selection is on in multi-display setups.
// Falls back to the primary display when no display contains the point.
func displayBoundsAt(p image.Point) image.Rectangle {
	n := screenshot.NumActiveDisplays()
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		if p.In(b) {
			return b
		}
	}
	return primaryDisplayBounds()
}

func primaryDisplayBounds() image.Rectangle {
	if screenshot.NumActiveDisplays() == 0 {
		return fallbackBounds
	}
	return screenshot.GetDisplayBounds(0)
}
