package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tipsxBase/clipboard/internal/capture"
	"github.com/tipsxBase/clipboard/internal/clipboard"
	"github.com/tipsxBase/clipboard/internal/config"
	"github.com/tipsxBase/clipboard/internal/event"
	"github.com/tipsxBase/clipboard/internal/store"
)

// ErrNoCaptureData is returned by CaptureData before any capture has run.
var ErrNoCaptureData = errors.New("no capture data available")

// StartCapture captures every attached display and shows one overlay surface
// per successful result. The capture runs before any surface appears so the
// overlays never end up in their own screenshots.
func (a *App) StartCapture(ctx context.Context) error {
	a.log.Info("starting screen capture")

	results, err := a.capture.CaptureAll(ctx, a.paths.ScreenshotsDir)
	if err != nil {
		return err
	}

	a.captureMu.Lock()
	a.lastCaptures = results
	a.captureMu.Unlock()

	if err := a.overlays.ShowOverlays(results); err != nil {
		return err
	}

	a.bus.Publish(event.Event{Type: event.CaptureCompleted, Payload: results})
	return nil
}

// CaptureData returns the most recent capture result list.
func (a *App) CaptureData() ([]capture.Result, error) {
	a.captureMu.Lock()
	defer a.captureMu.Unlock()
	if a.lastCaptures == nil {
		return nil, ErrNoCaptureData
	}
	return append([]capture.Result(nil), a.lastCaptures...), nil
}

// CloseCapture tears down all overlay surfaces.
func (a *App) CloseCapture() {
	a.log.Info("closing all overlay surfaces")
	a.overlays.CloseAll()
}

// SaveCapturedImage decodes a base64 PNG payload from the UI and writes it
// under the app-private captures directory, returning the file path.
func (a *App) SaveCapturedImage(encoded string) (string, error) {
	// Strip a data:image/png;base64, style prefix if present.
	if idx := strings.LastIndex(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	if err := os.MkdirAll(a.paths.CapturesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create captures directory: %w", err)
	}

	name := fmt.Sprintf("capture_%s.png", uuid.NewString())
	path := filepath.Join(a.paths.CapturesDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}

// History returns one page of the filtered history.
func (a *App) History(ctx context.Context, q store.HistoryQuery) ([]store.Item, error) {
	return a.store.History(ctx, q)
}

func (a *App) HistoryCount(ctx context.Context) (int, error) {
	return a.store.Count(ctx)
}

func (a *App) ItemContent(ctx context.Context, id int64) (string, error) {
	return a.store.ItemContent(ctx, id)
}

// SetClipboardItem writes content to the OS clipboard and records it in the
// history. The self-write marker is set before the clipboard write so the
// monitor does not re-record it. A non-nil id refreshes an existing item's
// recency instead of inserting a duplicate.
func (a *App) SetClipboardItem(ctx context.Context, content, kind string, id *int64, htmlContent *string) error {
	a.marker.Set(content)

	switch kind {
	case store.KindText:
		if err := a.device.WriteText(content); err != nil {
			return fmt.Errorf("failed to write text to clipboard: %w", err)
		}
	case store.KindImage:
		data, err := os.ReadFile(content)
		if err != nil {
			return fmt.Errorf("failed to read image file: %w", err)
		}
		if err := a.device.WriteImage(data); err != nil {
			return fmt.Errorf("failed to write image to clipboard: %w", err)
		}
		a.monitor.MarkImageWritten(data)
	default:
		return fmt.Errorf("unsupported clipboard kind: %s", kind)
	}

	if id != nil {
		if err := a.store.UpdateTimestamp(ctx, *id); err != nil {
			return err
		}
	} else {
		item := &store.Item{
			Content:     content,
			Kind:        kind,
			DataType:    clipboard.Classify(content),
			Timestamp:   time.Now(),
			HTMLContent: htmlContent,
		}
		if kind == store.KindImage {
			item.DataType = "image"
		}
		evicted, err := a.store.Insert(ctx, item, a.Config().MaxHistorySize)
		if err != nil {
			return err
		}
		a.removeBackingFiles(evicted)
	}

	a.bus.Publish(event.Event{Type: event.ClipboardUpdated})
	return nil
}

// DeleteItem removes the item and, for image items, the backing file.
func (a *App) DeleteItem(ctx context.Context, id int64) error {
	item, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	a.removeBackingFiles([]store.Item{*item})
	a.bus.Publish(event.Event{Type: event.ClipboardUpdated})
	return nil
}

func (a *App) ToggleSensitive(ctx context.Context, id int64) (bool, error) {
	return a.store.ToggleSensitive(ctx, id)
}

func (a *App) TogglePin(ctx context.Context, id int64) (bool, error) {
	return a.store.TogglePin(ctx, id)
}

func (a *App) UpdateItemContent(ctx context.Context, id int64, content, dataType string, note, htmlContent *string) error {
	return a.store.UpdateContent(ctx, id, content, dataType, note, htmlContent)
}

// ClearHistory removes all items except those exempted by the configured
// keep flags, deleting backing files of removed image items.
func (a *App) ClearHistory(ctx context.Context) error {
	cfg := a.Config()
	removed, err := a.store.Clear(ctx, cfg.KeepPinnedOnClear, cfg.KeepCollectedOnClear)
	if err != nil {
		return err
	}
	a.removeBackingFiles(removed)
	a.bus.Publish(event.Event{Type: event.ClipboardUpdated})
	return nil
}

func (a *App) CreateCollection(ctx context.Context, name string) (*store.Collection, error) {
	return a.store.CreateCollection(ctx, name)
}

func (a *App) Collections(ctx context.Context) ([]store.Collection, error) {
	return a.store.Collections(ctx)
}

func (a *App) DeleteCollection(ctx context.Context, id int64) error {
	return a.store.DeleteCollection(ctx, id)
}

func (a *App) SetItemCollection(ctx context.Context, itemID int64, collectionID *int64) error {
	return a.store.SetItemCollection(ctx, itemID, collectionID)
}

// SetPasteStack replaces the paste-accumulation stack.
func (a *App) SetPasteStack(items []store.Item) {
	a.pasteMu.Lock()
	a.pasteStack = append([]store.Item(nil), items...)
	a.pasteMu.Unlock()
}

func (a *App) PasteStack() []store.Item {
	a.pasteMu.Lock()
	defer a.pasteMu.Unlock()
	return append([]store.Item(nil), a.pasteStack...)
}

// RecognizeText delegates to the external OCR engine.
func (a *App) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	a.log.Info("starting ocr", zap.String("path", imagePath))
	text, err := a.ocr.Recognize(ctx, imagePath)
	if err != nil {
		a.log.Error("ocr failed", zap.Error(err))
		return "", err
	}
	return text, nil
}

// SaveConfig persists the configuration and applies it to the running
// session. Persistence is best-effort: a failed write is logged and the
// in-memory config still updates so the session stays internally consistent.
// A changed shortcut re-registers the global hotkey.
func (a *App) SaveConfig(cfg *config.Config) error {
	a.configMu.Lock()
	oldShortcut := a.config.Shortcut
	a.config = cfg.Clone()
	a.configMu.Unlock()

	if err := cfg.Save(a.paths.ConfigPath); err != nil {
		a.log.Error("failed to save config file", zap.Error(err))
	}

	if cfg.Shortcut != oldShortcut {
		if err := a.hotkeys.Reregister(cfg.Shortcut); err != nil {
			a.log.Error("failed to register new shortcut",
				zap.String("combo", cfg.Shortcut), zap.Error(err))
		}
	}

	a.bus.Publish(event.Event{Type: event.ConfigUpdated, Payload: cfg.Clone()})
	return nil
}

func (a *App) removeBackingFiles(items []store.Item) {
	for _, item := range items {
		if item.Kind != store.KindImage {
			continue
		}
		if err := os.Remove(item.Content); err != nil && !os.IsNotExist(err) {
			a.log.Error("failed to delete image file",
				zap.String("path", item.Content), zap.Error(err))
		}
	}
}
