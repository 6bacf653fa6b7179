package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed default.yaml
var defaultTemplate []byte

// DefaultTemplate returns the bundled default configuration document.
func DefaultTemplate() []byte {
	return append([]byte(nil), defaultTemplate...)
}

// WriteDefaults writes the bundled template to path, refusing to clobber an
// existing file unless force is set.
func WriteDefaults(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, defaultTemplate, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
