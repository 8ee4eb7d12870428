// Package tray runs the system tray icon: show the dictionary window, toggle
// screen word capture, quit. The capture checkbox stays in sync with changes
// made anywhere else in the app.
package tray

import (
	"log"

	"github.com/getlantern/systray"

	"dictyy/src/settings"
)

type Config struct {
	Tooltip string
	Prefs   *settings.Settings

	// OnShowWindow brings the main dictionary window to front.
	OnShowWindow func()
	// OnLookupClipboard looks the current clipboard text up in the
	// dictionary window.
	OnLookupClipboard func()
	// OnExit is called once when Quit is chosen or the tray shuts down.
	OnExit func()
}

type Tray struct {
	cfg Config
}

func New(cfg Config) *Tray {
	return &Tray{cfg: cfg}
}

// Run blocks inside the systray loop; call it from a dedicated goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy tears the tray icon down.
func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Dictyy")
	if t.cfg.Tooltip != "" {
		systray.SetTooltip(t.cfg.Tooltip)
	}

	mShow := systray.AddMenuItem("Show Dictionary", "Open the dictionary window")
	mClipboard := systray.AddMenuItem("Look Up Clipboard", "Look up the word on the clipboard")
	mCapture := systray.AddMenuItemCheckbox(
		"Screen Word Capture", "Look up words selected anywhere on screen",
		t.cfg.Prefs != nil && t.cfg.Prefs.CaptureEnabled())
	if t.cfg.Prefs != nil && t.cfg.Prefs.CaptureLocked() {
		mCapture.Disable()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit Dictyy")

	// External toggles must be reflected here too.
	if t.cfg.Prefs != nil {
		t.cfg.Prefs.OnCaptureChange(func(enabled bool) {
			if enabled {
				mCapture.Check()
			} else {
				mCapture.Uncheck()
			}
		})
	}

	go func() {
		for {
			select {
			case <-mShow.ClickedCh:
				if t.cfg.OnShowWindow != nil {
					t.cfg.OnShowWindow()
				}
			case <-mClipboard.ClickedCh:
				if t.cfg.OnLookupClipboard != nil {
					t.cfg.OnLookupClipboard()
				}
			case <-mCapture.ClickedCh:
				if t.cfg.Prefs != nil {
					enabled := t.cfg.Prefs.ToggleCapture()
					log.Printf("Tray: capture toggled to %v", enabled)
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}
