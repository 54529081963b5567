package finalise

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"mgchart/internal/infra/exec"
	logging "mgchart/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// showDPI keeps on-screen previews small.
const showDPI = 100

// Displayer puts a rendered chart in front of the user.
type Displayer interface {
	Display(ctx context.Context, img image.Image, name string) error
}

// Viewer writes the image to a temporary PNG and opens it with an external
// command. The file is left in place because most viewers return before
// they have read it.
type Viewer struct {
	Command string
	Timeout time.Duration
}

func (v *Viewer) Display(ctx context.Context, img image.Image, name string) error {
	dir, err := os.MkdirTemp("", "mgchart-show-")
	if err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	path := filepath.Join(dir, name+".png")
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	logging.LogDebug("Opening chart preview", zap.String("path", path), zap.String("viewer", v.Command))
	return exec.OpenFile(ctx, v.Command, path, v.Timeout)
}
