//go:build !windows

package bubble

import "log"

// logWindow stands in on platforms without the popup implementation so the
// rest of the pipeline stays exercisable.
type logWindow struct{}

func newPlatformWindow(onClick func(word string)) (window, error) {
	_ = onClick
	return logWindow{}, nil
}

func (logWindow) show(c Content, x, y int) {
	log.Printf("Bubble: show %q at (%d, %d): %s", c.header(), x, y, c.body())
}

func (logWindow) hide()  { log.Printf("Bubble: hide") }
func (logWindow) close() {}
