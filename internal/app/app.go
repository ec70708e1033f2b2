// Package app owns the shared application state and the command boundary
// consumed by the UI layer. Each logical resource (config, pause flag, last
// capture snapshot, paste stack) sits behind its own lock; the history lives
// in the store and the locks here are never held across clipboard, file, or
// window-system calls.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tipsxBase/clipboard/internal/capture"
	"github.com/tipsxBase/clipboard/internal/clipboard"
	"github.com/tipsxBase/clipboard/internal/config"
	"github.com/tipsxBase/clipboard/internal/event"
	"github.com/tipsxBase/clipboard/internal/hotkey"
	"github.com/tipsxBase/clipboard/internal/ocr"
	"github.com/tipsxBase/clipboard/internal/overlay"
	"github.com/tipsxBase/clipboard/internal/store"
)

type Options struct {
	Config         *config.Config
	Store          *store.Store
	Device         clipboard.Device
	CaptureSource  capture.Source
	OverlayBackend overlay.Backend
	Hotkeys        hotkey.Registrar
	OCR            ocr.Recognizer
	Paths          Paths
	Logger         *zap.Logger

	// SourceApp reports the frontmost application name at clipboard
	// sampling time; empty when detection is unavailable.
	SourceApp func() string
}

type App struct {
	log      *zap.Logger
	store    *store.Store
	bus      *event.Bus
	device   clipboard.Device
	monitor  *clipboard.Monitor
	capture  *capture.Service
	overlays *overlay.Orchestrator
	hotkeys  hotkey.Registrar
	ocr      ocr.Recognizer
	marker   *clipboard.Marker
	paths    Paths

	// OnHotkey runs on the global shortcut. The UI layer installs its
	// popup toggle here before Start.
	OnHotkey func()

	configMu sync.RWMutex
	config   *config.Config

	pauseMu sync.Mutex
	paused  bool

	captureMu    sync.Mutex
	lastCaptures []capture.Result

	pasteMu    sync.Mutex
	pasteStack []store.Item
}

func New(opts Options) (*App, error) {
	if err := opts.Paths.ensure(); err != nil {
		return nil, err
	}

	a := &App{
		log:      opts.Logger,
		store:    opts.Store,
		bus:      event.NewBus(),
		device:   opts.Device,
		hotkeys:  opts.Hotkeys,
		ocr:      opts.OCR,
		marker:   &clipboard.Marker{},
		paths:    opts.Paths,
		config:   opts.Config,
		capture:  capture.NewService(opts.CaptureSource, opts.Logger),
		overlays: overlay.NewOrchestrator(opts.OverlayBackend, opts.Logger),
	}

	a.monitor = clipboard.NewMonitor(opts.Device, opts.Store, a.marker, a.bus, opts.Logger, clipboard.Options{
		Interval:  time.Duration(opts.Config.MonitorIntervalMS) * time.Millisecond,
		ImagesDir: opts.Paths.ImagesDir,
		Cap: func() int {
			return a.Config().MaxHistorySize
		},
		Paused: a.Paused,
		SensitiveApps: func() []string {
			return a.Config().SensitiveApps
		},
		SourceApp: opts.SourceApp,
	})

	return a, nil
}

// Start launches the clipboard monitor and registers the global shortcut.
// The monitor runs until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start clipboard monitor: %w", err)
	}

	combo := a.Config().Shortcut
	if err := a.hotkeys.Register(combo, func() {
		if a.OnHotkey != nil {
			a.OnHotkey()
		}
	}); err != nil {
		// A taken or unparsable shortcut should not stop the app.
		a.log.Error("failed to register global shortcut",
			zap.String("combo", combo), zap.Error(err))
	}

	return nil
}

// Events returns a subscription to the app's notification broadcast.
func (a *App) Events() <-chan event.Event {
	return a.bus.Subscribe()
}

// Config returns a copy of the live configuration.
func (a *App) Config() *config.Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.config.Clone()
}

func (a *App) Paused() bool {
	a.pauseMu.Lock()
	defer a.pauseMu.Unlock()
	return a.paused
}

func (a *App) SetPaused(paused bool) {
	a.pauseMu.Lock()
	a.paused = paused
	a.pauseMu.Unlock()

	a.bus.Publish(event.Event{Type: event.PauseStateChanged, Payload: paused})
}

func (a *App) Close() error {
	a.hotkeys.Close()
	a.overlays.CloseAll()
	return a.store.Close()
}
