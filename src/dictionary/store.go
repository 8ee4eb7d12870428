// Package dictionary is the full SQLite-backed dictionary used by the main
// window and the CLI. The bubble path never queries it directly; that path
// runs off the in-memory abstract index.
package dictionary

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	_ "modernc.org/sqlite"
)

// Entry is a full main-dictionary record with its LLM-cached content joined
// in and the contributing source dictionaries listed.
type Entry struct {
	Word        string
	PhoneticUS  string
	PhoneticUK  string
	Content     string
	Sources     []string
	GPT4Content string
}

// Suggestion is one fuzzy-search hit for the search box.
type Suggestion struct {
	Word  string
	Brief string
}

// MdxEntry is a record from one of the MDX-derived tables (Collins, etyma).
// Link entries are resolved before being returned, so IsLink is only true
// when the chain was too deep or dangling.
type MdxEntry struct {
	Word       string
	Content    string
	IsLink     bool
	LinkTarget string
}

// maxLinkDepth bounds MDX link chains; real data has one or two hops.
const maxLinkDepth = 5

// Store wraps the dictionary database. Safe for concurrent use; database/sql
// pools connections underneath.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path. A missing file is a deployment
// error reported up front rather than a silently created empty database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("dictionary db: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping dictionary db: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle so the abstract index can load from the
// same database.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Lookup returns the main-dictionary entry for word, or nil when absent.
func (s *Store) Lookup(ctx context.Context, word string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT w.word, w.phonetic_us, w.phonetic_uk, w.content, g.content
		 FROM words w
		 LEFT JOIN gpt4_words g ON LOWER(w.word) = LOWER(g.word)
		 WHERE LOWER(w.word) = LOWER(?)`, word)

	var e Entry
	var phUS, phUK, gpt4 sql.NullString
	if err := row.Scan(&e.Word, &phUS, &phUK, &e.Content, &gpt4); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup %q: %w", word, err)
	}
	e.PhoneticUS = phUS.String
	e.PhoneticUK = phUK.String
	e.GPT4Content = gpt4.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT ws.source FROM word_sources ws
		 JOIN words w ON ws.word_id = w.id
		 WHERE LOWER(w.word) = LOWER(?)`, word)
	if err != nil {
		return nil, fmt.Errorf("lookup sources for %q: %w", word, err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		e.Sources = append(e.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return &e, nil
}

// LookupCollins resolves word in the Collins table, following link entries.
func (s *Store) LookupCollins(ctx context.Context, word string) (*MdxEntry, error) {
	return s.lookupMdx(ctx, "collins_words", word)
}

// LookupEtyma resolves word in the root/affix table, following link entries.
func (s *Store) LookupEtyma(ctx context.Context, word string) (*MdxEntry, error) {
	return s.lookupMdx(ctx, "etyma_words", word)
}

func (s *Store) lookupMdx(ctx context.Context, table, word string) (*MdxEntry, error) {
	// table is one of two compile-time constants, never user input.
	query := fmt.Sprintf(
		`SELECT word, content, is_link, link_target FROM %s WHERE LOWER(word) = LOWER(?)`, table)

	current := word
	for depth := 0; ; depth++ {
		var e MdxEntry
		var isLink int
		var target sql.NullString
		err := s.db.QueryRowContext(ctx, query, current).Scan(&e.Word, &e.Content, &isLink, &target)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s %q: %w", table, current, err)
		}
		e.IsLink = isLink != 0
		e.LinkTarget = target.String

		if e.IsLink && e.LinkTarget != "" && depth < maxLinkDepth {
			current = e.LinkTarget
			continue
		}
		return &e, nil
	}
}

// LookupGPT4 returns the cached LLM content for word, or "" when absent.
func (s *Store) LookupGPT4(ctx context.Context, word string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM gpt4_words WHERE LOWER(word) = LOWER(?)`, word).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup gpt4 %q: %w", word, err)
	}
	return content, nil
}

// SaveGPT4 caches generated content so the next lookup is offline.
func (s *Store) SaveGPT4(ctx context.Context, word, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gpt4_words (word, content) VALUES (?, ?)
		 ON CONFLICT(word) DO UPDATE SET content = excluded.content`,
		strings.ToLower(word), content)
	if err != nil {
		return fmt.Errorf("save gpt4 %q: %w", word, err)
	}
	return nil
}

type candidate struct {
	word     string
	brief    string
	isPrefix bool
	distance int
}

// Search returns up to limit suggestions for the search box: prefix matches
// from all three dictionaries first, then close-edit-distance words from the
// main dictionary when prefix hits run short. Queries under two characters
// return nothing.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 || limit <= 0 {
		return nil, nil
	}
	queryLower := strings.ToLower(query)
	pattern := queryLower + "%"

	var candidates []candidate
	seen := make(map[string]bool)

	collect := func(table, where string, scanLimit int, brief func(string) string) error {
		q := fmt.Sprintf(
			`SELECT word, content FROM %s WHERE LOWER(word) LIKE ?%s
			 ORDER BY LENGTH(word) ASC LIMIT %d`, table, where, scanLimit)
		rows, err := s.db.QueryContext(ctx, q, pattern)
		if err != nil {
			return fmt.Errorf("search %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var word, content string
			if err := rows.Scan(&word, &content); err != nil {
				return fmt.Errorf("scan %s: %w", table, err)
			}
			lower := strings.ToLower(word)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			candidates = append(candidates, candidate{
				word:     word,
				brief:    brief(content),
				isPrefix: true,
				distance: levenshtein.ComputeDistance(queryLower, lower),
			})
		}
		return rows.Err()
	}

	if err := collect("words", "", 30, extractBrief); err != nil {
		return nil, err
	}
	if err := collect("collins_words", " AND is_link = 0", 20, extractCollinsBrief); err != nil {
		return nil, err
	}
	if err := collect("etyma_words", " AND is_link = 0", 10, extractEtymaBrief); err != nil {
		return nil, err
	}

	if len(candidates) < limit {
		if err := s.searchByDistance(ctx, queryLower, pattern, seen, &candidates); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].isPrefix != candidates[j].isPrefix {
			return candidates[i].isPrefix
		}
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		out[i] = Suggestion{Word: c.word, Brief: c.brief}
	}
	return out, nil
}

// searchByDistance pulls near-length words from the main dictionary and keeps
// those within edit distance 2 of the query.
func (s *Store) searchByDistance(ctx context.Context, queryLower, pattern string, seen map[string]bool, candidates *[]candidate) error {
	minLen := len(queryLower) - 1
	if minLen < 1 {
		minLen = 1
	}
	maxLen := len(queryLower) + 2

	rows, err := s.db.QueryContext(ctx,
		`SELECT word, content FROM words
		 WHERE LOWER(word) NOT LIKE ? AND LENGTH(word) BETWEEN ? AND ?
		 LIMIT 50`, pattern, minLen, maxLen)
	if err != nil {
		return fmt.Errorf("search by distance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var word, content string
		if err := rows.Scan(&word, &content); err != nil {
			return fmt.Errorf("scan words: %w", err)
		}
		lower := strings.ToLower(word)
		if seen[lower] {
			continue
		}
		d := levenshtein.ComputeDistance(queryLower, lower)
		if d > 2 {
			continue
		}
		seen[lower] = true
		*candidates = append(*candidates, candidate{
			word:     word,
			brief:    extractBrief(content),
			distance: d,
		})
	}
	return rows.Err()
}

// extractBrief pulls the first couple of translations out of a main
// dictionary content blob ({content:{word:{content:{trans:[{pos,tranCn}]}}}}).
func extractBrief(content string) string {
	var doc struct {
		Content struct {
			Word struct {
				Content struct {
					Trans []struct {
						Pos    string `json:"pos"`
						TranCn string `json:"tranCn"`
					} `json:"trans"`
				} `json:"content"`
			} `json:"word"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}
	var parts []string
	for _, t := range doc.Content.Word.Content.Trans {
		if len(parts) == 2 {
			break
		}
		if t.TranCn == "" {
			continue
		}
		if t.Pos != "" {
			parts = append(parts, t.Pos+" "+t.TranCn)
		} else {
			parts = append(parts, t.TranCn)
		}
	}
	return strings.Join(parts, "; ")
}

// extractCollinsBrief pulls the first definitions from a Collins blob
// ({definitions:[{pos,cn}]}).
func extractCollinsBrief(content string) string {
	var doc struct {
		Definitions []struct {
			Pos string `json:"pos"`
			Cn  string `json:"cn"`
		} `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}
	var parts []string
	for _, d := range doc.Definitions {
		if len(parts) == 2 {
			break
		}
		if d.Cn == "" {
			continue
		}
		if d.Pos != "" {
			parts = append(parts, d.Pos+" "+d.Cn)
		} else {
			parts = append(parts, d.Cn)
		}
	}
	return strings.Join(parts, "; ")
}

// extractEtymaBrief pulls pos+meaning from a root/affix blob.
func extractEtymaBrief(content string) string {
	var doc struct {
		Pos     string `json:"pos"`
		Meaning string `json:"meaning"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}
	if doc.Meaning == "" {
		return ""
	}
	if doc.Pos != "" {
		return doc.Pos + " " + doc.Meaning
	}
	return doc.Meaning
}
