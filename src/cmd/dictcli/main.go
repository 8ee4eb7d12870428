// dict-cli looks words up in a Dictyy dictionary database from the command
// line. It shares the resident app's store and lemmatizer, so results match
// what the bubble and main window would show.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dictyy/src/config"
	"dictyy/src/dictionary"
	"dictyy/src/lemma"
)

const queryTimeout = 10 * time.Second

type cliOptions struct {
	dbPath     string
	search     bool
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"dict-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dict-cli <word>",
		Short:         "Look a word up in the Dictyy database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Path to dictionary database (default from config)")
	cmd.Flags().BoolVar(&opts.search, "search", false, "Treat the argument as a prefix query and list suggestions")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(opts cliOptions, query string) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting dictionary lookup\n")
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		dbPath = cfg.DBPath
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Using database: %s\n", dbPath)
	}

	store, err := dictionary.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if opts.search {
		return runSearch(ctx, store, query, opts.jsonOutput)
	}
	return runLookup(ctx, store, query, opts.jsonOutput, opts.verbose)
}

// LookupResult is the JSON shape of a single-word lookup.
type LookupResult struct {
	Query      string   `json:"query"`
	Word       string   `json:"word"`
	Found      bool     `json:"found"`
	PhoneticUS string   `json:"phonetic_us,omitempty"`
	PhoneticUK string   `json:"phonetic_uk,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Collins    string   `json:"collins,omitempty"`
	Etyma      string   `json:"etyma,omitempty"`
	AINotes    string   `json:"ai_notes,omitempty"`
}

func runLookup(ctx context.Context, store *dictionary.Store, query string, jsonOutput, verbose bool) error {
	entry, err := store.Lookup(ctx, query)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if entry == nil {
		// Inflected form: retry with lemmatized candidates.
		for _, cand := range lemma.Candidates(query) {
			entry, err = store.Lookup(ctx, cand)
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}
			if entry != nil {
				if verbose {
					fmt.Fprintf(os.Stderr, "[verbose] %q resolved to headword %q\n", query, cand)
				}
				break
			}
		}
	}

	result := LookupResult{Query: query, Word: query}
	if entry == nil {
		// Words the main tables miss may still have a cached AI definition.
		cached, err := store.LookupGPT4(ctx, query)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		if cached != "" {
			result.Found = true
			result.AINotes = dictionary.RenderGPT4Content(cached)
		}
	}
	if entry != nil {
		result.Found = true
		result.Word = entry.Word
		result.PhoneticUS = entry.PhoneticUS
		result.PhoneticUK = entry.PhoneticUK
		result.Sources = entry.Sources
		result.Definition = dictionary.RenderMainContent(entry.Content)
		if entry.GPT4Content != "" {
			result.AINotes = dictionary.RenderGPT4Content(entry.GPT4Content)
		}

		if collins, err := store.LookupCollins(ctx, result.Word); err == nil && collins != nil {
			result.Collins = collins.Content
		}
		if etyma, err := store.LookupEtyma(ctx, result.Word); err == nil && etyma != nil {
			result.Etyma = etyma.Content
		}
	}

	if jsonOutput {
		return writeJSON(result)
	}
	if !result.Found {
		return fmt.Errorf("no entry for %q", query)
	}
	fmt.Print(formatEntry(result))
	return nil
}

// SearchResult is the JSON shape of a suggestion query.
type SearchResult struct {
	Query       string                  `json:"query"`
	Suggestions []dictionary.Suggestion `json:"suggestions"`
}

func runSearch(ctx context.Context, store *dictionary.Store, query string, jsonOutput bool) error {
	suggestions, err := store.Search(ctx, query, 20)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return writeJSON(SearchResult{Query: query, Suggestions: suggestions})
	}
	for _, s := range suggestions {
		if s.Brief != "" {
			fmt.Printf("%s\t%s\n", s.Word, s.Brief)
		} else {
			fmt.Println(s.Word)
		}
	}
	return nil
}

func formatEntry(r LookupResult) string {
	var b strings.Builder
	b.WriteString(r.Word)
	if r.PhoneticUS != "" {
		fmt.Fprintf(&b, "  US /%s/", r.PhoneticUS)
	}
	if r.PhoneticUK != "" {
		fmt.Fprintf(&b, "  UK /%s/", r.PhoneticUK)
	}
	b.WriteString("\n")
	if len(r.Sources) > 0 {
		fmt.Fprintf(&b, "[%s]\n", strings.Join(r.Sources, ", "))
	}
	if r.Definition != "" {
		b.WriteString("\n")
		b.WriteString(r.Definition)
		b.WriteString("\n")
	}
	if r.AINotes != "" {
		b.WriteString("\nAI notes:\n")
		b.WriteString(r.AINotes)
		b.WriteString("\n")
	}
	return b.String()
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
