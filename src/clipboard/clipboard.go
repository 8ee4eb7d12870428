package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var writeMu sync.Mutex

func Init() error {
	return clipboard.Init()
}

// Write performs a mutex-guarded clipboard write so the tray copy action and
// the main window copy button cannot interleave.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Read returns the current text clipboard contents.
func Read() string {
	return string(clipboard.Read(clipboard.FmtText))
}
