package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mgchart/internal/config"
	logging "mgchart/internal/infra/log"

	"go.uber.org/zap"
)

// DefaultChartDir is used when no directory has been set.
const DefaultChartDir = "."

// ChartDir is the fallback output directory for finalised charts.
// It is not safe for concurrent mutation.
type ChartDir struct {
	path string
}

// NewChartDir returns a ChartDir pointing at path without touching the
// filesystem. An empty path means DefaultChartDir.
func NewChartDir(path string) *ChartDir {
	if path == "" {
		path = DefaultChartDir
	}
	return &ChartDir{path: path}
}

// Path returns the current directory.
func (d *ChartDir) Path() string {
	if d == nil || d.path == "" {
		return DefaultChartDir
	}
	return d.path
}

// Set points d at path, creating it if needed. An empty path means
// DefaultChartDir. On failure d is left unchanged.
func (d *ChartDir) Set(path string) error {
	if path == "" {
		path = DefaultChartDir
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	d.path = path
	logging.LogDebug("Chart directory set", zap.String("path", path))
	return nil
}

// Clear removes the chart files directly inside the directory: any file
// whose extension is a supported chart type, in any case. It does not
// descend into subdirectories. It returns the number of files removed.
func (d *ChartDir) Clear() (int, error) {
	dir := d.Path()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read chart directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isImage(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}

	logging.LogInfo("Chart directory cleared",
		zap.String("path", dir),
		zap.Int("removed", removed))
	return removed, nil
}

func isImage(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return ext != "" && config.SupportedFileType(ext)
}

// Join returns dir/name, falling back to d when dir is empty.
func (d *ChartDir) Join(dir, name string) string {
	if dir == "" {
		dir = d.Path()
	}
	return filepath.Join(dir, name)
}
