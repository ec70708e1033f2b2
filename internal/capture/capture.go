// Package capture enumerates attached displays and captures each one
// concurrently, encoding full-frame stills to PNG files.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoDisplays is returned when no display is attached. Downstream overlay
// orchestration requires at least one, so this is a hard failure rather than
// an empty success.
var ErrNoDisplays = errors.New("no displays attached")

// Display describes one attached display. X and Y are the logical origin;
// Width and Height are physical pixels.
type Display struct {
	ID          int
	X, Y        int
	Width       int
	Height      int
	ScaleFactor float64
}

// Source enumerates displays and captures full-frame stills. The production
// implementation wraps the screenshot library; tests substitute fakes.
type Source interface {
	Displays() ([]Display, error)
	Capture(d Display) (image.Image, error)
}

// Result describes one successfully captured display. It is transient: held
// only until superseded by the next capture or process exit.
type Result struct {
	ID          int     `json:"id"`
	Path        string  `json:"path"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
}

type Service struct {
	source Source
	log    *zap.Logger
}

func NewService(source Source, log *zap.Logger) *Service {
	return &Service{source: source, log: log}
}

// CaptureAll captures every attached display concurrently and writes one PNG
// per display under outputDir. A per-display failure is logged and that
// display omitted; the call fails only when zero displays succeed. It blocks
// until every spawned capture has finished.
func (s *Service) CaptureAll(ctx context.Context, outputDir string) ([]Result, error) {
	start := time.Now()

	displays, err := s.source.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return nil, ErrNoDisplays
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s.log.Info("capturing displays", zap.Int("count", len(displays)))

	slots := make([]*Result, len(displays))
	var wg sync.WaitGroup
	for i, d := range displays {
		wg.Add(1)
		go func(i int, d Display) {
			defer wg.Done()
			res, err := s.captureOne(d, outputDir)
			if err != nil {
				s.log.Error("failed to capture display",
					zap.Int("display", d.ID), zap.Error(err))
				return
			}
			slots[i] = res
		}(i, d)
	}
	wg.Wait()

	results := make([]Result, 0, len(displays))
	for _, res := range slots {
		if res != nil {
			results = append(results, *res)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d display captures failed", len(displays))
	}

	s.log.Info("capture complete",
		zap.Int("captured", len(results)), zap.Duration("took", time.Since(start)))

	return results, nil
}

func (s *Service) captureOne(d Display, outputDir string) (*Result, error) {
	capStart := time.Now()

	img, err := s.source.Capture(d)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	// Display id plus timestamp keeps repeated invocations from colliding.
	name := fmt.Sprintf("screenshot_%d_%d.png", d.ID, time.Now().UnixMilli())
	path := filepath.Join(outputDir, name)

	if err := writePNG(path, img); err != nil {
		return nil, err
	}

	s.log.Debug("display captured",
		zap.Int("display", d.ID), zap.Duration("took", time.Since(capStart)))

	return &Result{
		ID:          d.ID,
		Path:        path,
		X:           d.X,
		Y:           d.Y,
		Width:       d.Width,
		Height:      d.Height,
		ScaleFactor: d.ScaleFactor,
	}, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode png: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
