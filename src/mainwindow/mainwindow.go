// Package mainwindow is the full dictionary window: search box with
// suggestions, complete entry view, and the LLM fallback for words the
// local database misses.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dictyy/src/clipboard"
	"dictyy/src/dictionary"
	"dictyy/src/llm"
)

const (
	suggestionLimit = 8
	lookupTimeout   = 5 * time.Second
)

type Window struct {
	app   fyne.App
	win   fyne.Window
	store *dictionary.Store

	search      *widget.Entry
	suggestions []dictionary.Suggestion
	suggestList *widget.List

	title    *widget.Label
	phonetic *widget.Label
	sources  *widget.Label
	body     *widget.Label
	askLLM   *widget.Button

	currentWord string
	currentText string

	// visible mirrors the window state; only touched on the GUI thread.
	visible bool
}

func New(store *dictionary.Store) *Window {
	a := app.NewWithID("io.dictyy.app")
	w := &Window{
		app:   a,
		win:   a.NewWindow("Dictyy"),
		store: store,
	}
	w.build()
	return w
}

func (w *Window) build() {
	w.search = widget.NewEntry()
	w.search.SetPlaceHolder("Search a word...")
	w.search.OnChanged = func(q string) { go w.refreshSuggestions(q) }
	w.search.OnSubmitted = func(q string) { w.ShowWord(strings.TrimSpace(q)) }

	w.suggestList = widget.NewList(
		func() int { return len(w.suggestions) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			s := w.suggestions[i]
			text := s.Word
			if s.Brief != "" {
				text += "  " + s.Brief
			}
			obj.(*widget.Label).SetText(text)
		},
	)
	w.suggestList.OnSelected = func(i widget.ListItemID) {
		if i >= 0 && i < len(w.suggestions) {
			w.ShowWord(w.suggestions[i].Word)
		}
		w.suggestList.UnselectAll()
	}

	w.title = widget.NewLabel("")
	w.title.TextStyle = fyne.TextStyle{Bold: true}
	w.phonetic = widget.NewLabel("")
	w.sources = widget.NewLabel("")
	w.body = widget.NewLabel("Select a word anywhere on screen, or search above.")
	w.body.Wrapping = fyne.TextWrapWord

	copyBtn := widget.NewButton("Copy", func() {
		if w.currentText != "" {
			if err := clipboard.Write(w.currentText); err != nil {
				log.Printf("MainWindow: clipboard write failed: %v", err)
			}
		}
	})
	w.askLLM = widget.NewButton("Ask AI", func() {
		word := w.currentWord
		if word != "" {
			go w.queryLLM(word)
		}
	})
	w.askLLM.Hide()

	header := container.NewVBox(w.title, w.phonetic, w.sources)
	detail := container.NewBorder(
		header,
		container.NewHBox(copyBtn, w.askLLM),
		nil, nil,
		container.NewVScroll(w.body),
	)

	left := container.NewBorder(w.search, nil, nil, nil, w.suggestList)
	split := container.NewHSplit(left, detail)
	split.SetOffset(0.3)

	w.win.SetContent(split)
	w.win.Resize(fyne.NewSize(720, 480))
	// Closing hides to the tray; Quit is the tray's job.
	w.win.SetCloseIntercept(func() {
		w.win.Hide()
		w.visible = false
	})
}

// Show brings the window to front. Safe from any goroutine.
func (w *Window) Show() {
	fyne.Do(func() {
		w.win.Show()
		w.win.RequestFocus()
		w.visible = true
	})
}

// ToggleVisibility shows the window when hidden and hides it otherwise; the
// global hotkey lands here. Safe from any goroutine.
func (w *Window) ToggleVisibility() {
	fyne.Do(func() {
		if w.visible {
			w.win.Hide()
			w.visible = false
			return
		}
		w.win.Show()
		w.win.RequestFocus()
		w.visible = true
	})
}

// ShowAndRun enters the GUI main loop; must be called from the main
// goroutine and blocks until the app quits.
func (w *Window) ShowAndRun() {
	w.visible = true
	w.win.Show()
	w.app.Run()
}

// Quit stops the GUI main loop.
func (w *Window) Quit() {
	fyne.Do(func() { w.app.Quit() })
}

// ShowWord looks word up and displays the full entry, raising the window.
// Safe from any goroutine; bubble clicks land here.
func (w *Window) ShowWord(word string) {
	if word == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		entry, err := w.store.Lookup(ctx, word)
		if err != nil {
			log.Printf("MainWindow: lookup %q: %v", word, err)
			return
		}
		fyne.Do(func() {
			w.renderEntry(word, entry)
			w.win.Show()
			w.win.RequestFocus()
			w.visible = true
		})
	}()
}

// renderEntry must run on the GUI thread.
func (w *Window) renderEntry(word string, entry *dictionary.Entry) {
	w.askLLM.Hide()

	if entry == nil {
		w.currentWord = word
		w.currentText = ""
		w.title.SetText(word)
		w.phonetic.SetText("")
		w.sources.SetText("")
		w.body.SetText("No local entry.")
		if llm.Configured() {
			w.askLLM.Show()
		}
		return
	}

	var phonetics []string
	if entry.PhoneticUS != "" {
		phonetics = append(phonetics, "US "+entry.PhoneticUS)
	}
	if entry.PhoneticUK != "" {
		phonetics = append(phonetics, "UK "+entry.PhoneticUK)
	}

	var sections []string
	if main := dictionary.RenderMainContent(entry.Content); main != "" {
		sections = append(sections, main)
	}
	if entry.GPT4Content != "" {
		if ai := dictionary.RenderGPT4Content(entry.GPT4Content); ai != "" {
			sections = append(sections, "AI notes:\n"+ai)
		}
	}
	text := strings.Join(sections, "\n\n")
	if text == "" {
		text = "Entry has no renderable content."
	}

	w.currentWord = entry.Word
	w.currentText = fmt.Sprintf("%s\n%s", entry.Word, text)
	w.title.SetText(entry.Word)
	w.phonetic.SetText(strings.Join(phonetics, "   "))
	if len(entry.Sources) > 0 {
		w.sources.SetText(strings.Join(entry.Sources, ", "))
	} else {
		w.sources.SetText("")
	}
	w.body.SetText(text)
}

func (w *Window) refreshSuggestions(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	got, err := w.store.Search(ctx, query, suggestionLimit)
	if err != nil {
		log.Printf("MainWindow: search %q: %v", query, err)
		return
	}
	fyne.Do(func() {
		w.suggestions = got
		w.suggestList.Refresh()
	})
}

// queryLLM fetches a definition for a missing word, caches it and rerenders.
func (w *Window) queryLLM(word string) {
	fyne.Do(func() {
		w.body.SetText("Asking the model about \"" + word + "\"...")
		w.askLLM.Disable()
	})
	defer fyne.Do(func() { w.askLLM.Enable() })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	content, err := llm.QueryDefinition(ctx, word)
	if err != nil {
		log.Printf("MainWindow: LLM query %q: %v", word, err)
		fyne.Do(func() { w.body.SetText("Model query failed: " + err.Error()) })
		return
	}
	if err := w.store.SaveGPT4(ctx, word, content); err != nil {
		log.Printf("MainWindow: cache LLM result for %q: %v", word, err)
	}

	rendered := dictionary.RenderGPT4Content(content)
	fyne.Do(func() {
		w.currentText = word + "\n" + rendered
		w.body.SetText(rendered)
		w.askLLM.Hide()
	})
}
