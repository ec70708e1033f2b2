package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "clipboard-manager"

// Paths locates the app-private directories. Images and saved captures live
// under the data dir so their lifecycle follows the history database;
// transient screenshots go to the cache dir.
type Paths struct {
	ConfigPath     string
	DatabasePath   string
	ImagesDir      string
	CapturesDir    string
	ScreenshotsDir string
}

func DefaultPaths() (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve user cache dir: %w", err)
	}

	dataDir := filepath.Join(configDir, appDirName)
	return Paths{
		ConfigPath:     filepath.Join(dataDir, "config.json"),
		DatabasePath:   filepath.Join(dataDir, "history.db"),
		ImagesDir:      filepath.Join(dataDir, "images"),
		CapturesDir:    filepath.Join(dataDir, "captures"),
		ScreenshotsDir: filepath.Join(cacheDir, appDirName, "screenshots"),
	}, nil
}

func (p Paths) ensure() error {
	for _, dir := range []string{
		filepath.Dir(p.ConfigPath),
		filepath.Dir(p.DatabasePath),
		p.ImagesDir,
		p.CapturesDir,
		p.ScreenshotsDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
