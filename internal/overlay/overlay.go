package overlay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tipsxBase/clipboard/internal/capture"
)

// Orchestrator owns the overlay surfaces, exactly one per display id.
type Orchestrator struct {
	backend Backend
	log     *zap.Logger

	mu       sync.Mutex
	surfaces map[int]Surface
}

func NewOrchestrator(backend Backend, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		log:      log,
		surfaces: make(map[int]Surface),
	}
}

// ShowOverlays ensures one surface per capture result, reusing surfaces from
// a prior call where the display is already known. After every surface is
// shown, the complete result list is broadcast once to all of them.
func (o *Orchestrator) ShowOverlays(results []capture.Result) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, res := range results {
		surface, ok := o.surfaces[res.ID]
		if !ok {
			// Captures carry physical pixel sizes; the windowing layer
			// expects logical units. The origin is already logical.
			opts := SurfaceOptions{
				DisplayID:     res.ID,
				LogicalX:      float64(res.X),
				LogicalY:      float64(res.Y),
				LogicalWidth:  float64(res.Width) / res.ScaleFactor,
				LogicalHeight: float64(res.Height) / res.ScaleFactor,
				Borderless:    true,
				AlwaysOnTop:   true,
				SkipTaskbar:   true,
				StartHidden:   true,
			}
			created, err := o.backend.Create(opts)
			if err != nil {
				return fmt.Errorf("failed to create overlay for display %d: %w", res.ID, err)
			}
			o.surfaces[res.ID] = created
			surface = created
			o.log.Debug("overlay surface created",
				zap.Int("display", res.ID),
				zap.Float64("logical_width", opts.LogicalWidth),
				zap.Float64("logical_height", opts.LogicalHeight))
		}

		// Second pass in physical units: some platforms snap the logical
		// size to the display's DPI, so pin the exact bounds afterwards.
		surface.SetPhysicalFrame(res.X, res.Y, res.Width, res.Height)
		surface.Elevate()
		surface.Show()
		surface.Focus()
	}

	for _, surface := range o.surfaces {
		surface.Deliver(results)
	}

	return nil
}

// CloseAll tears down every surface owned by the orchestrator. Windows
// belonging to other subsystems are untouched.
func (o *Orchestrator) CloseAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, surface := range o.surfaces {
		surface.Close()
		delete(o.surfaces, id)
	}
	o.log.Debug("all overlay surfaces closed")
}
