package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tipsxBase/clipboard/internal/event"
	"github.com/tipsxBase/clipboard/internal/store"
	"github.com/tipsxBase/clipboard/internal/util"
)

// Inserter is the slice of the history store the monitor needs.
type Inserter interface {
	Insert(ctx context.Context, item *store.Item, cap int) ([]store.Item, error)
}

// Options configures a Monitor. The function fields read shared state owned
// by the app so the monitor always sees live config without holding locks
// across a tick.
type Options struct {
	Interval  time.Duration
	ImagesDir string

	Cap           func() int
	Paused        func() bool
	SensitiveApps func() []string

	// SourceApp reports the frontmost application at sampling time.
	// Empty string when unknown; detection is platform-dependent and optional.
	SourceApp func() string
}

// Monitor polls the OS clipboard on a fixed cadence and forwards changes to
// the history store. It runs for the process lifetime; only ctx cancellation
// stops the loop.
type Monitor struct {
	device  Device
	history Inserter
	marker  *Marker
	bus     *event.Bus
	log     *zap.Logger
	opts    Options

	// fpMu guards the fingerprints: the loop owns them, but the app updates
	// the image fingerprint after a programmatic write.
	fpMu        sync.Mutex
	lastText    string
	lastImageFP string

	isRunning bool
}

func NewMonitor(device Device, history Inserter, marker *Marker, bus *event.Bus, log *zap.Logger, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Monitor{
		device:  device,
		history: history,
		marker:  marker,
		bus:     bus,
		log:     log,
		opts:    opts,
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	if m.isRunning {
		return fmt.Errorf("monitor is already running")
	}

	// Seed fingerprints with whatever is on the clipboard now so startup
	// does not record pre-existing content.
	m.fpMu.Lock()
	m.lastText = m.device.ReadText()
	if img := m.device.ReadImage(); len(img) > 0 {
		m.lastImageFP = util.Fingerprint(img)
	}
	m.fpMu.Unlock()

	m.isRunning = true
	m.log.Info("clipboard monitor started", zap.Duration("interval", m.opts.Interval))

	go m.loop(ctx)

	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.isRunning = false
			m.log.Info("clipboard monitor stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	if m.opts.Paused != nil && m.opts.Paused() {
		return
	}

	m.checkText(ctx)
	m.checkImage(ctx)
}

func (m *Monitor) checkText(ctx context.Context) {
	text := m.device.ReadText()
	m.fpMu.Lock()
	changed := text != "" && text != m.lastText
	if changed {
		m.lastText = text
	}
	m.fpMu.Unlock()
	if !changed {
		return
	}

	if m.marker.Matches(text) {
		return
	}

	item := &store.Item{
		Content:   text,
		Kind:      store.KindText,
		DataType:  Classify(text),
		Timestamp: time.Now(),
	}
	m.applySource(item)

	m.insert(ctx, item)
}

func (m *Monitor) checkImage(ctx context.Context) {
	data := m.device.ReadImage()
	if len(data) == 0 {
		return
	}
	fp := util.Fingerprint(data)
	m.fpMu.Lock()
	changed := fp != m.lastImageFP
	if changed {
		m.lastImageFP = fp
	}
	m.fpMu.Unlock()
	if !changed {
		return
	}

	path, err := m.encodeImage(data)
	if err != nil {
		m.log.Error("failed to encode clipboard image", zap.Error(err))
		return
	}

	item := &store.Item{
		Content:   path,
		Kind:      store.KindImage,
		DataType:  "image",
		Timestamp: time.Now(),
	}
	m.applySource(item)

	m.insert(ctx, item)
}

// encodeImage re-encodes the raw clipboard payload as PNG and writes it under
// the images directory. The returned path becomes the item's content.
func (m *Monitor) encodeImage(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	if err := os.MkdirAll(m.opts.ImagesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	name := fmt.Sprintf("clip_%d.png", time.Now().UnixNano())
	path := filepath.Join(m.opts.ImagesDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to encode png: %w", err)
	}

	return path, nil
}

func (m *Monitor) applySource(item *store.Item) {
	if m.opts.SourceApp == nil {
		return
	}
	source := m.opts.SourceApp()
	if source == "" {
		return
	}
	item.SourceApp = &source
	if m.opts.SensitiveApps == nil {
		return
	}
	for _, app := range m.opts.SensitiveApps() {
		if app == source {
			item.IsSensitive = true
			break
		}
	}
}

func (m *Monitor) insert(ctx context.Context, item *store.Item) {
	cap := 0
	if m.opts.Cap != nil {
		cap = m.opts.Cap()
	}

	evicted, err := m.history.Insert(ctx, item, cap)
	if err != nil {
		m.log.Error("failed to save clipboard item", zap.Error(err))
		return
	}

	for _, old := range evicted {
		if old.Kind != store.KindImage {
			continue
		}
		if err := os.Remove(old.Content); err != nil && !os.IsNotExist(err) {
			m.log.Error("failed to delete pruned image file",
				zap.String("path", old.Content), zap.Error(err))
		}
	}

	m.bus.Publish(event.Event{Type: event.ClipboardUpdated})
	m.log.Debug("saved clipboard item",
		zap.String("kind", item.Kind), zap.String("data_type", item.DataType))
}

// MarkImageWritten records the fingerprint of an image payload the app just
// wrote to the clipboard so the next tick does not re-record it.
func (m *Monitor) MarkImageWritten(data []byte) {
	m.fpMu.Lock()
	m.lastImageFP = util.Fingerprint(data)
	m.fpMu.Unlock()
}
