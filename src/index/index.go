// Package index holds the in-memory word abstract table used by the bubble.
// The whole word_abstracts table (tens of thousands of rows) is loaded once
// at startup and never mutated, so lookups are lock-free and safe from any
// goroutine.
package index

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"dictyy/src/lemma"
)

// WordAbstract is a compact pre-rendered summary of one dictionary entry,
// keyed by lowercase headword.
type WordAbstract struct {
	Word       string
	Phonetic   string
	MainDef    string
	CollinsDef string
	EtymaDef   string
	GPT4Def    string
}

// BestDefinition picks the first non-empty definition in display priority:
// main dictionary, Collins, etymology, LLM cache. Empty when all are blank.
func (a WordAbstract) BestDefinition() string {
	for _, def := range []string{a.MainDef, a.CollinsDef, a.EtymaDef, a.GPT4Def} {
		if def != "" {
			return def
		}
	}
	return ""
}

// Index is immutable after Load and shared by reference.
type Index struct {
	entries map[string]WordAbstract
}

// Load reads every row of word_abstracts. The returned index is fully built
// before it is handed to callers; a load error leaves no partial index
// behind, and the caller is expected to run without screen capture.
func Load(db *sql.DB) (*Index, error) {
	rows, err := db.Query(
		`SELECT word, phonetic, main_def, collins_def, etyma_def, gpt4_def FROM word_abstracts`)
	if err != nil {
		return nil, fmt.Errorf("query word_abstracts: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]WordAbstract, 65536)
	for rows.Next() {
		var a WordAbstract
		var phonetic, mainDef, collinsDef, etymaDef, gpt4Def sql.NullString
		if err := rows.Scan(&a.Word, &phonetic, &mainDef, &collinsDef, &etymaDef, &gpt4Def); err != nil {
			return nil, fmt.Errorf("scan word_abstracts: %w", err)
		}
		a.Phonetic = phonetic.String
		a.MainDef = mainDef.String
		a.CollinsDef = collinsDef.String
		a.EtymaDef = etymaDef.String
		a.GPT4Def = gpt4Def.String
		entries[strings.ToLower(a.Word)] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read word_abstracts: %w", err)
	}

	log.Printf("Index: loaded %d word abstracts", len(entries))
	return &Index{entries: entries}, nil
}

// New builds an index from preloaded entries; used by tests and tools.
func New(abstracts []WordAbstract) *Index {
	entries := make(map[string]WordAbstract, len(abstracts))
	for _, a := range abstracts {
		entries[strings.ToLower(a.Word)] = a
	}
	return &Index{entries: entries}
}

// Len reports the number of loaded abstracts.
func (ix *Index) Len() int { return len(ix.entries) }

// Lookup performs an exact match against the lowercased key.
func (ix *Index) Lookup(word string) (WordAbstract, bool) {
	a, ok := ix.entries[strings.ToLower(word)]
	return a, ok
}

// Resolve looks the word up exactly, then falls back to lemmatized
// candidates. Exact match always wins. On a lemma hit the returned entry
// keeps its headword so the bubble can show what was actually found.
func (ix *Index) Resolve(word string) (WordAbstract, bool) {
	if a, ok := ix.Lookup(word); ok {
		return a, true
	}
	stem, ok := lemma.Normalize(word, func(cand string) bool {
		_, hit := ix.entries[cand]
		return hit
	})
	if !ok {
		return WordAbstract{}, false
	}
	return ix.entries[stem], true
}
