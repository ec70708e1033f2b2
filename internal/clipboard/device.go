// Package clipboard watches the OS clipboard for changes and feeds them into
// the history store. Reads are best-effort: an empty clipboard or an
// unreadable format is not an error, just an empty result.
package clipboard

import (
	"fmt"

	"golang.design/x/clipboard"
)

// Device abstracts the OS clipboard so the monitor can be exercised without a
// display server in tests.
type Device interface {
	// ReadText returns the current text contents, or "" when none.
	ReadText() string
	// ReadImage returns the current image payload as encoded bytes, or nil.
	ReadImage() []byte
	WriteText(text string) error
	WriteImage(data []byte) error
}

type systemDevice struct{}

// NewSystemDevice initializes the OS clipboard and returns a Device backed by
// it. Initialization fails on headless systems without a display server.
func NewSystemDevice() (Device, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	return systemDevice{}, nil
}

func (systemDevice) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

func (systemDevice) ReadImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

func (systemDevice) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (systemDevice) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// NullDevice is the fallback for environments without a display server:
// reads are always empty and writes are discarded.
type NullDevice struct{}

func (NullDevice) ReadText() string        { return "" }
func (NullDevice) ReadImage() []byte       { return nil }
func (NullDevice) WriteText(string) error  { return nil }
func (NullDevice) WriteImage([]byte) error { return nil }
