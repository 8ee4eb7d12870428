package dictionary

import (
	"encoding/json"
	"strings"
)

// RenderMainContent formats a main-dictionary content blob as display text:
// one "pos definition" line per translation.
func RenderMainContent(content string) string {
	var doc struct {
		Content struct {
			Word struct {
				Content struct {
					Trans []struct {
						Pos    string `json:"pos"`
						TranCn string `json:"tranCn"`
						TranEn string `json:"tranOther"`
					} `json:"trans"`
				} `json:"content"`
			} `json:"word"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return ""
	}
	var b strings.Builder
	for _, t := range doc.Content.Word.Content.Trans {
		if t.TranCn == "" && t.TranEn == "" {
			continue
		}
		if t.Pos != "" {
			b.WriteString(t.Pos)
			b.WriteString(" ")
		}
		b.WriteString(t.TranCn)
		if t.TranEn != "" {
			if t.TranCn != "" {
				b.WriteString("; ")
			}
			b.WriteString(t.TranEn)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderGPT4Content formats an LLM definition blob (the gpt4_words shape:
// translations, sentences, phrases, rememberMethod) as display text. Returns
// the raw blob when it is not JSON, so hand-edited cache rows still show.
func RenderGPT4Content(content string) string {
	var doc struct {
		PhoneticUS   string `json:"phonetic_us"`
		PhoneticUK   string `json:"phonetic_uk"`
		Translations []struct {
			Pos    string `json:"pos"`
			TranCn string `json:"tranCn"`
		} `json:"translations"`
		Sentences []struct {
			En string `json:"en"`
			Cn string `json:"cn"`
		} `json:"sentences"`
		Phrases []struct {
			Phrase  string `json:"phrase"`
			Meaning string `json:"meaning"`
		} `json:"phrases"`
		RememberMethod string `json:"rememberMethod"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return content
	}

	var b strings.Builder
	for _, t := range doc.Translations {
		if t.TranCn == "" {
			continue
		}
		if t.Pos != "" {
			b.WriteString(t.Pos)
			b.WriteString(" ")
		}
		b.WriteString(t.TranCn)
		b.WriteString("\n")
	}
	if len(doc.Sentences) > 0 {
		b.WriteString("\n")
		for _, s := range doc.Sentences {
			if s.En == "" {
				continue
			}
			b.WriteString("· ")
			b.WriteString(s.En)
			if s.Cn != "" {
				b.WriteString("\n  ")
				b.WriteString(s.Cn)
			}
			b.WriteString("\n")
		}
	}
	if len(doc.Phrases) > 0 {
		b.WriteString("\n")
		for _, p := range doc.Phrases {
			if p.Phrase == "" {
				continue
			}
			b.WriteString(p.Phrase)
			if p.Meaning != "" {
				b.WriteString(" - ")
				b.WriteString(p.Meaning)
			}
			b.WriteString("\n")
		}
	}
	if doc.RememberMethod != "" && doc.RememberMethod != "null" {
		b.WriteString("\n")
		b.WriteString(doc.RememberMethod)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
