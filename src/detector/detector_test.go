package detector

import (
	"testing"
	"time"

	"dictyy/src/selection"
)

func snap(text string) *selection.Snapshot {
	return &selection.Snapshot{Text: text}
}

// drive feeds the same text at the given offsets from a fixed origin and
// returns every non-none result, simulating the 200ms poll cadence.
func drive(d *Detector, text string, offsets ...time.Duration) []Result {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var out []Result
	for _, off := range offsets {
		r := d.Observe(snap(text), base.Add(off))
		if r.Event != EventNone {
			out = append(out, r)
		}
	}
	return out
}

func TestSettledWordFiresExactlyOneLookup(t *testing.T) {
	d := New(500 * time.Millisecond)

	// Held stable well past the window across many polls.
	got := drive(d, "ghost", 0, 200*time.Millisecond, 400*time.Millisecond,
		600*time.Millisecond, 800*time.Millisecond, 1500*time.Millisecond)

	if len(got) != 1 {
		t.Fatalf("events = %v, want exactly one", got)
	}
	if got[0].Event != EventLookup || got[0].Word != "ghost" {
		t.Errorf("event = %+v, want lookup for ghost", got[0])
	}
	if d.State() != Settled {
		t.Errorf("state = %v, want Settled", d.State())
	}
}

func TestChurningTextNeverSettles(t *testing.T) {
	d := New(500 * time.Millisecond)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// A new word every 200ms; nothing survives the window.
	words := []string{"a", "ab", "abc", "abcd", "abcde", "abcdef", "abcdefg"}
	for i, w := range words {
		r := d.Observe(snap(w), base.Add(time.Duration(i)*200*time.Millisecond))
		if r.Event == EventLookup {
			t.Fatalf("lookup fired for %q", w)
		}
	}
	if d.State() == Settled {
		t.Error("detector settled on churning text")
	}
}

func TestDebounceUsesWallClockNotTickCount(t *testing.T) {
	d := New(500 * time.Millisecond)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// Only two observations, but the second arrives after a long stall.
	d.Observe(snap("ghost"), base)
	r := d.Observe(snap("ghost"), base.Add(2*time.Second))
	if r.Event != EventLookup {
		t.Errorf("event = %+v, want lookup after stalled ticks", r)
	}
}

func TestResettleSameWordIsNoOp(t *testing.T) {
	d := New(500 * time.Millisecond)

	got := drive(d, "ghost", 0, 600*time.Millisecond)
	if len(got) != 1 || got[0].Event != EventLookup {
		t.Fatalf("setup events = %v", got)
	}

	// Case changes and re-observations of the settled word do nothing.
	base := time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC)
	for i, text := range []string{"ghost", "Ghost", "GHOST", "ghost"} {
		r := d.Observe(snap(text), base.Add(time.Duration(i)*time.Second))
		if r.Event != EventNone {
			t.Errorf("Observe(%q) = %+v, want no event", text, r)
		}
	}
}

func TestClearedSelectionHidesAndReselectRefires(t *testing.T) {
	d := New(500 * time.Millisecond)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	d.Observe(snap("ghost"), base)
	d.Observe(snap("ghost"), base.Add(600*time.Millisecond))

	r := d.Observe(nil, base.Add(800*time.Millisecond))
	if r.Event != EventClear {
		t.Fatalf("clear after settle = %+v, want EventClear", r)
	}

	// Clearing while nothing is shown stays silent.
	if r := d.Observe(nil, base.Add(time.Second)); r.Event != EventNone {
		t.Errorf("repeat clear = %+v, want no event", r)
	}

	// Re-selecting the same word after a hide must fire again.
	d.Observe(snap("ghost"), base.Add(2*time.Second))
	r = d.Observe(snap("ghost"), base.Add(2600*time.Millisecond))
	if r.Event != EventLookup {
		t.Errorf("re-settle after clear = %+v, want lookup", r)
	}
}

func TestSwitchingWordsClearsThenLooksUpNewWord(t *testing.T) {
	d := New(500 * time.Millisecond)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	d.Observe(snap("ghost"), base)
	d.Observe(snap("ghost"), base.Add(600*time.Millisecond))

	r := d.Observe(snap("spirit"), base.Add(800*time.Millisecond))
	if r.Event != EventClear {
		t.Fatalf("switch = %+v, want EventClear for the stale bubble", r)
	}
	r = d.Observe(snap("spirit"), base.Add(1400*time.Millisecond))
	if r.Event != EventLookup || r.Word != "spirit" {
		t.Errorf("settle after switch = %+v, want lookup for spirit", r)
	}
}

func TestResetMidPendingFiresNoLookup(t *testing.T) {
	d := New(500 * time.Millisecond)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	d.Observe(snap("ghost"), base)
	if r := d.Reset(); r.Event != EventNone {
		t.Errorf("Reset mid-pending = %+v, want no event", r)
	}
	if d.State() != Idle {
		t.Errorf("state = %v, want Idle", d.State())
	}

	// The pending word must not settle on a later observation using the old
	// first-seen time.
	r := d.Observe(snap("ghost"), base.Add(time.Hour))
	if r.Event == EventLookup {
		t.Error("lookup fired immediately after reset")
	}
}

func TestValidCandidate(t *testing.T) {
	valid := []string{"a", "ghost", "Ghost", "don't", "mother-in-law", "o'clock"}
	for _, s := range valid {
		if !ValidCandidate(s) {
			t.Errorf("ValidCandidate(%q) = false", s)
		}
	}

	invalid := []string{
		"",
		"two words",
		"line\nbreak",
		"word7",
		"-ghost",
		"ghost-",
		"'tis",
		"rock--bottom",
		"it's'",
		"面白い",
		"café",
		"verylongwordthatkeepsgoingandgoingandgoingandgoings", // 51 chars
	}
	for _, s := range invalid {
		if ValidCandidate(s) {
			t.Errorf("ValidCandidate(%q) = true", s)
		}
	}
}
