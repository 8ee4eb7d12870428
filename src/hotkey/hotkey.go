// Package hotkey registers a global key combination that toggles the main
// dictionary window. Detection is rawcode-based via a low level keyboard
// hook, so it works regardless of which application has focus.
package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers combo (e.g. "Ctrl+`") and invokes callback every time the
// full combination is pressed. Invalid combos are logged and ignored; a
// dictionary without its toggle key still works from the tray.
func Listen(combo string, callback func()) {
	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}

	var keyStates []keyState
	for _, keyName := range parseHotkey(combo) {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			log.Printf("Hotkey: cannot map key %q, combination %q may not work", keyName, combo)
			continue
		}
		keyStates = append(keyStates, keyState{name: keyName, rawcodes: rawcodes})
	}
	if len(keyStates) == 0 {
		log.Printf("Hotkey: no valid keys in %q, listener not started", combo)
		// The window is still reachable from the tray.
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: listener panic: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("Hotkey: hook start failed")
			return
		}
		log.Printf("Hotkey: listening for %s", combo)

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				for i := range keyStates {
					for _, rc := range keyStates[i].rawcodes {
						if ev.Rawcode == rc {
							keyStates[i].pressed = true
						}
					}
				}
				all := true
				for i := range keyStates {
					if !keyStates[i].pressed {
						all = false
						break
					}
				}
				if all {
					for i := range keyStates {
						keyStates[i].pressed = false
					}
					mu.Unlock()
					if callback != nil {
						callback()
					}
					continue
				}
				mu.Unlock()

			case gohook.KeyUp:
				mu.Lock()
				for i := range keyStates {
					for _, rc := range keyStates[i].rawcodes {
						if ev.Rawcode == rc {
							keyStates[i].pressed = false
						}
					}
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()
}

func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			// "Ctrl+" splits to a trailing empty part; treat a literal
			// plus sign combo like "Ctrl++" the same way.
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// keyNameToRawcodes maps a key name to its Windows virtual-key rawcodes.
// Modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	}

	// Single letters and digits line up with their VK codes.
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16('A' + c - 'a')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		case c == '`':
			return []uint16{192} // VK_OEM_3
		case c == '-':
			return []uint16{189} // VK_OEM_MINUS
		case c == '=':
			return []uint16{187} // VK_OEM_PLUS
		}
	}

	// F1..F24 are contiguous from VK_F1 = 112.
	if strings.HasPrefix(keyName, "f") && len(keyName) <= 3 {
		n := 0
		for _, c := range keyName[1:] {
			if c < '0' || c > '9' {
				n = 0
				break
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	switch keyName {
	case "backtick", "grave":
		return []uint16{192} // VK_OEM_3
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	case "backspace":
		return []uint16{8}
	case "delete", "del":
		return []uint16{46}
	case "insert", "ins":
		return []uint16{45}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup", "pgup":
		return []uint16{33}
	case "pagedown", "pgdn":
		return []uint16{34}
	case "left":
		return []uint16{37}
	case "up":
		return []uint16{38}
	case "right":
		return []uint16{39}
	case "down":
		return []uint16{40}
	}

	log.Printf("Hotkey: unknown key name %q", keyName)
	return nil
}
