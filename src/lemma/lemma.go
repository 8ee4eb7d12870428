// Package lemma reduces inflected English word forms to probable dictionary
// headwords via ordered suffix-stripping rules. It is a heuristic fallback
// for index lookups, not a morphological analyzer: callers must prefer the
// exact surface form and only consult candidates when it misses.
package lemma

import "strings"

// Candidates returns candidate headwords for an inflected form, most likely
// first. The input is lowercased; the surface form itself is not included.
func Candidates(word string) []string {
	w := strings.ToLower(word)
	n := len(w)
	var out []string
	add := func(s string) {
		if s == "" || s == w {
			return
		}
		for _, seen := range out {
			if seen == s {
				return
			}
		}
		out = append(out, s)
	}

	// studies -> study (only after a consonant; "movies" must not yield "movy")
	if n > 3 && strings.HasSuffix(w, "ies") && !isVowel(w[n-4]) {
		add(w[:n-3] + "y")
	}

	// resources -> resource, watches -> watch
	if n > 2 && strings.HasSuffix(w, "es") {
		add(w[:n-1])
		add(w[:n-2])
	}

	// cats -> cat; skip -ss/-us-style endings the plural rule never produces
	if n > 1 && strings.HasSuffix(w, "s") && !blockedPluralStem(w) {
		add(w[:n-1])
	}

	// studied -> study
	if n > 3 && strings.HasSuffix(w, "ied") {
		add(w[:n-3] + "y")
	}

	// walked -> walk, removed -> remove, stopped -> stop
	if n > 2 && strings.HasSuffix(w, "ed") {
		stem := w[:n-2]
		add(stem)
		if restoresFinalE(stem) {
			add(stem + "e")
		}
		add(undouble(stem))
	}

	// walking -> walk, loving -> love, running -> run
	if n > 4 && strings.HasSuffix(w, "ing") {
		stem := w[:n-3]
		add(stem)
		if restoresFinalE(stem) {
			add(stem + "e")
		}
		add(undouble(stem))
	}

	return out
}

// Normalize returns the first candidate accepted by exists. The surface form
// is never offered; exact-match precedence is the caller's responsibility.
func Normalize(word string, exists func(string) bool) (string, bool) {
	for _, cand := range Candidates(word) {
		if exists(cand) {
			return cand, true
		}
	}
	return "", false
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// restoresFinalE reports whether a stripped stem likely dropped a final "e":
// it ends in a single consonant preceded by a single vowel (remov -> remove,
// but walk and train do not qualify).
func restoresFinalE(stem string) bool {
	n := len(stem)
	if n < 2 {
		return false
	}
	if isVowel(stem[n-1]) || !isVowel(stem[n-2]) {
		return false
	}
	if n >= 3 && isVowel(stem[n-3]) {
		return false
	}
	return true
}

// undouble collapses a doubled trailing consonant (runn -> run). Returns ""
// when the stem does not end in one.
func undouble(stem string) string {
	n := len(stem)
	if n < 2 || stem[n-1] != stem[n-2] || isVowel(stem[n-1]) {
		return ""
	}
	return stem[:n-1]
}

// blockedPluralStem reports endings where stripping a bare "s" is wrong:
// -ss, -xs, -zs, -chs, -shs (glass, boxes handled by the -es rule).
func blockedPluralStem(w string) bool {
	n := len(w)
	switch w[n-2] {
	case 's', 'x', 'z':
		return true
	}
	if n > 2 && w[n-3] == 'c' && w[n-2] == 'h' {
		return true
	}
	if n > 2 && w[n-3] == 's' && w[n-2] == 'h' {
		return true
	}
	return false
}
