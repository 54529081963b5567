package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	logging "mgchart/internal/infra/log"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

// WriteFileAtomic creates the parent directory of path, streams write into a
// pending file next to it and renames it over path once write succeeds.
// Readers see either the old file or the complete new one.
func WriteFileAtomic(path string, write func(w io.Writer) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return 0, fmt.Errorf("failed to create pending file: %w", err)
	}
	defer func() {
		// no-op once CloseAtomicallyReplace has succeeded
		if err := pending.Cleanup(); err != nil {
			logging.LogDebug("Cleanup pending file", zap.String("path", path), zap.Error(err))
		}
	}()

	if err := write(pending); err != nil {
		return 0, err
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		os.Remove(path)
		return 0, fmt.Errorf("file %s is empty after writing", path)
	}
	return info.Size(), nil
}
