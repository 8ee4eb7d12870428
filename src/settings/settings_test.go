package settings

import "testing"

func TestToggleAndObservers(t *testing.T) {
	s := New(true)

	var got []bool
	s.OnCaptureChange(func(enabled bool) { got = append(got, enabled) })

	if s.ToggleCapture() {
		t.Fatal("toggle from true returned true")
	}
	if !s.ToggleCapture() {
		t.Fatal("toggle from false returned false")
	}
	// Setting the current value again must not notify.
	s.SetCaptureEnabled(true)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("observer calls = %v", got)
	}
}

func TestLockCaptureOffRejectsReenable(t *testing.T) {
	s := New(true)
	s.LockCaptureOff()

	if s.CaptureEnabled() {
		t.Fatal("capture still enabled after lock")
	}
	if !s.CaptureLocked() {
		t.Fatal("CaptureLocked = false after lock")
	}

	s.SetCaptureEnabled(true)
	if s.CaptureEnabled() {
		t.Fatal("SetCaptureEnabled(true) took effect while locked")
	}
	if s.ToggleCapture() {
		t.Fatal("ToggleCapture reported enabled while locked")
	}
	if s.CaptureEnabled() {
		t.Fatal("toggle enabled capture while locked")
	}
}

func TestLockNotifiesObserversOnce(t *testing.T) {
	s := New(true)
	calls := 0
	s.OnCaptureChange(func(bool) { calls++ })

	s.LockCaptureOff()
	s.SetCaptureEnabled(true)
	s.ToggleCapture()

	if calls != 1 {
		t.Errorf("observer calls = %d, want only the lock-off", calls)
	}
}
