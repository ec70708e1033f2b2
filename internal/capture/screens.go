package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// screenSource is the production Source, backed by the screenshot library.
// The library reports bounds in the same pixel space it captures in, so the
// scale factor is 1.0; displays attached through a backend that separates
// logical and physical units come in through a different Source.
type screenSource struct{}

func NewScreenSource() Source {
	return screenSource{}
}

func (screenSource) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		displays = append(displays, Display{
			ID:          i,
			X:           bounds.Min.X,
			Y:           bounds.Min.Y,
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
			ScaleFactor: 1.0,
		})
	}
	return displays, nil
}

func (screenSource) Capture(d Display) (image.Image, error) {
	img, err := screenshot.Capture(d.X, d.Y, d.Width, d.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", d.ID, err)
	}
	return img, nil
}
