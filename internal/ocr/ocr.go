// Package ocr delegates text recognition to an external engine. The core
// treats it as an opaque collaborator: a path goes in, recognized text or a
// descriptive error comes out.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Recognizer extracts text from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Engine shells out to a command-line OCR engine (tesseract by default).
type Engine struct {
	// Command is the engine binary name or path.
	Command string
	// Languages is passed to the engine's -l flag when non-empty.
	Languages string
}

func NewEngine() *Engine {
	return &Engine{Command: "tesseract"}
}

func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("image not readable: %w", err)
	}

	args := []string{imagePath, "stdout"}
	if e.Languages != "" {
		args = append(args, "-l", e.Languages)
	}

	out, err := exec.CommandContext(ctx, e.Command, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("ocr engine failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("ocr engine failed: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}
