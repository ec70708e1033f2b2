// Package overlay manages the transient full-screen surfaces shown over each
// display during a capture session. The windowing layer is reached through
// the Backend capability interface; platforms without a native layer get the
// headless backend, which is a complete no-op implementation of the same
// contract rather than a special case in calling code.
package overlay

import "github.com/tipsxBase/clipboard/internal/capture"

// SurfaceOptions describes a surface at creation time. LogicalX/Y/Width/
// Height are in the windowing layer's logical coordinate space.
type SurfaceOptions struct {
	DisplayID int

	LogicalX      float64
	LogicalY      float64
	LogicalWidth  float64
	LogicalHeight float64

	Borderless  bool
	AlwaysOnTop bool
	SkipTaskbar bool
	StartHidden bool
}

// Surface is one live overlay window.
type Surface interface {
	// SetPhysicalFrame positions and sizes the surface in physical pixels.
	// Issued after creation to defeat automatic DPI snapping on platforms
	// that re-round logical sizes.
	SetPhysicalFrame(x, y, width, height int)

	// Elevate raises the surface above system chrome and pins it across
	// virtual desktops and full-screen spaces. No-op where the compositor
	// needs no explicit escalation.
	Elevate()

	Show()
	Focus()

	// Deliver hands the surface the complete capture result list. Each
	// surface selects the entry matching its own display id.
	Deliver(results []capture.Result)

	Close()
}

// Backend creates overlay surfaces on the underlying windowing layer.
type Backend interface {
	Create(opts SurfaceOptions) (Surface, error)
}
