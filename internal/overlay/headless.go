package overlay

import "github.com/tipsxBase/clipboard/internal/capture"

// headlessBackend backs environments without a native windowing layer. Every
// operation is a valid no-op; the orchestrator never needs to know.
type headlessBackend struct{}

// NewHeadlessBackend returns a Backend whose surfaces do nothing.
func NewHeadlessBackend() Backend {
	return headlessBackend{}
}

func (headlessBackend) Create(SurfaceOptions) (Surface, error) {
	return headlessSurface{}, nil
}

type headlessSurface struct{}

func (headlessSurface) SetPhysicalFrame(x, y, width, height int) {}
func (headlessSurface) Elevate()                                 {}
func (headlessSurface) Show()                                    {}
func (headlessSurface) Focus()                                   {}
func (headlessSurface) Deliver([]capture.Result)                 {}
func (headlessSurface) Close()                                   {}
