package lemma

import (
	"testing"
)

func TestCandidatesCommonInflections(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"resources", "resource"},
		{"removed", "remove"},
		{"walking", "walk"},
		{"studies", "study"},
		{"studied", "study"},
		{"watches", "watch"},
		{"cats", "cat"},
		{"running", "run"},
		{"stopped", "stop"},
		{"loving", "love"},
	}

	for _, tc := range cases {
		got := Candidates(tc.in)
		found := false
		for _, c := range got {
			if c == tc.want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Candidates(%q) = %v, missing %q", tc.in, got, tc.want)
		}
	}
}

func TestCandidatesRespectsConsonantRuleForIES(t *testing.T) {
	// "movies" ends in vowel+ies; the -ies -> -y rule must not fire.
	for _, c := range Candidates("movies") {
		if c == "movy" {
			t.Errorf("Candidates(movies) produced %q", c)
		}
	}
}

func TestCandidatesBlockedPluralEndings(t *testing.T) {
	// Stripping a bare "s" off -ss/-x/-z/-ch/-sh endings is never right.
	for _, word := range []string{"glass", "boxs", "buzzs"} {
		for _, c := range Candidates(word) {
			if c == word[:len(word)-1] {
				t.Errorf("Candidates(%q) stripped bare s: %v", word, c)
			}
		}
	}
}

func TestNormalizeUsesIndexMembership(t *testing.T) {
	index := map[string]bool{"resource": true, "remove": true, "walk": true, "study": true}
	exists := func(w string) bool { return index[w] }

	cases := map[string]string{
		"resources": "resource",
		"removed":   "remove",
		"walking":   "walk",
		"studies":   "study",
	}
	for in, want := range cases {
		got, ok := Normalize(in, exists)
		if !ok || got != want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	if got, ok := Normalize("qwerty", exists); ok {
		t.Errorf("Normalize(qwerty) unexpectedly resolved to %q", got)
	}
}

func TestNormalizeNeverReturnsSurfaceForm(t *testing.T) {
	exists := func(string) bool { return true }
	if got, ok := Normalize("walk", exists); ok && got == "walk" {
		t.Errorf("Normalize returned the surface form unchanged")
	}
}
