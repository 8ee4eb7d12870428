// Package settings holds the small amount of runtime-togglable state shared
// between the tray menu and the capture engine.
package settings

import "sync"

// Settings is safe for concurrent use.
type Settings struct {
	mu             sync.Mutex
	captureEnabled bool
	captureLocked  bool
	onCapture      []func(enabled bool)
}

// New creates settings with the given initial capture state.
func New(captureEnabled bool) *Settings {
	return &Settings{captureEnabled: captureEnabled}
}

// CaptureEnabled reports whether screen word capture is on.
func (s *Settings) CaptureEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureEnabled
}

// LockCaptureOff switches capture off for the rest of the session; later
// enable attempts are rejected. Used when a subsystem capture depends on
// failed at startup.
func (s *Settings) LockCaptureOff() {
	s.mu.Lock()
	s.captureLocked = true
	s.mu.Unlock()
	s.SetCaptureEnabled(false)
}

// CaptureLocked reports whether capture has been locked off.
func (s *Settings) CaptureLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureLocked
}

// SetCaptureEnabled flips the capture switch and notifies observers when the
// value actually changed. Enabling is ignored while capture is locked off.
// Observers run outside the lock.
func (s *Settings) SetCaptureEnabled(enabled bool) {
	s.mu.Lock()
	if enabled && s.captureLocked {
		s.mu.Unlock()
		return
	}
	if s.captureEnabled == enabled {
		s.mu.Unlock()
		return
	}
	s.captureEnabled = enabled
	observers := make([]func(bool), len(s.onCapture))
	copy(observers, s.onCapture)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(enabled)
	}
}

// ToggleCapture flips the switch and returns the effective state, which
// stays false when capture is locked off.
func (s *Settings) ToggleCapture() bool {
	s.mu.Lock()
	next := !s.captureEnabled
	s.mu.Unlock()
	s.SetCaptureEnabled(next)
	return s.CaptureEnabled()
}

// OnCaptureChange registers an observer for capture state changes.
func (s *Settings) OnCaptureChange(fn func(enabled bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCapture = append(s.onCapture, fn)
}
