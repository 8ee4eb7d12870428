package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"dictyy/src/bubble"
	"dictyy/src/clipboard"
	"dictyy/src/config"
	"dictyy/src/detector"
	"dictyy/src/dictionary"
	"dictyy/src/engine"
	"dictyy/src/hotkey"
	"dictyy/src/index"
	"dictyy/src/llm"
	"dictyy/src/logutil"
	"dictyy/src/mainwindow"
	"dictyy/src/selection"
	"dictyy/src/settings"
	"dictyy/src/singleinstance"
	"dictyy/src/tray"
)

func main() {
	// DPI awareness must be set before any window or metric query.
	enableDPIAwareness()

	// The GUI toolkit requires the main goroutine to own the main OS thread.
	runtime.LockOSThread()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	// A resident instance gets the window shown; this launch exits.
	if singleinstance.NotifyExisting(2 * time.Second) {
		log.Printf("Main: delegated to resident instance")
		return
	}

	logMonitorConfiguration()

	store, err := dictionary.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open dictionary %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	// Capture cannot run without the abstract index; the dictionary window
	// still works, so lock capture off for the session instead of failing.
	ix, err := index.Load(store.DB())
	if err != nil {
		log.Printf("Main: word index unavailable, capture disabled: %v", err)
		ix = nil
	}
	prefs := settings.New(cfg.CaptureEnabled && ix != nil)
	if ix == nil {
		prefs.LockCaptureOff()
	}

	if cfg.LLMAPIKey != "" {
		llm.Init(&llm.Config{
			APIBase: cfg.LLMAPIBase,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		})
		log.Printf("Main: LLM fallback enabled, model %s", cfg.LLMModel)
	} else {
		log.Printf("Main: no LLM API key, fallback disabled")
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("Main: clipboard unavailable: %v", err)
	}

	win := mainwindow.New(store)

	bub, err := bubble.New(func(word string) { win.ShowWord(word) })
	if err != nil {
		log.Fatalf("Failed to create bubble window: %v", err)
	}
	defer bub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := singleinstance.NewServer(func() { win.Show() })
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Another instance appears to be starting: %v", err)
	}
	defer srv.Close()

	if ix != nil {
		eng := engine.New(engine.Options{
			NewReader:       selection.NewReader,
			Index:           ix,
			Presenter:       bub,
			Prefs:           prefs,
			PollInterval:    time.Duration(cfg.PollIntervalMS) * time.Millisecond,
			StabilityWindow: time.Duration(cfg.StabilityMS) * time.Millisecond,
		})
		go func() {
			if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Main: capture engine stopped: %v", err)
			}
		}()
	}

	trayIcon := tray.New(tray.Config{
		Tooltip:      fmt.Sprintf("Dictyy - %s toggles the dictionary window", cfg.Hotkey),
		Prefs:        prefs,
		OnShowWindow: win.Show,
		OnLookupClipboard: func() {
			word := strings.TrimSpace(clipboard.Read())
			if !detector.ValidCandidate(word) {
				log.Printf("Main: clipboard holds no lookable word")
				return
			}
			win.ShowWord(word)
		},
		OnExit: win.Quit,
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	go hotkey.Listen(cfg.Hotkey, win.ToggleVisibility)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		win.Quit()
	}()

	log.Printf("Dictyy started: db=%s hotkey=%s poll=%dms stability=%dms",
		cfg.DBPath, cfg.Hotkey, cfg.PollIntervalMS, cfg.StabilityMS)

	// Blocks until the app quits; runs on the main OS thread.
	win.ShowAndRun()
	cancel()
}
