package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultViewer returns the command that opens files with the desktop's
// default application.
func DefaultViewer() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// OpenFile runs command with path appended as its last argument and waits
// up to timeout for it to exit. command may carry its own arguments
// ("feh --scale-down"); empty or blank means DefaultViewer.
func OpenFile(ctx context.Context, command, path string, timeout time.Duration) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = strings.Fields(DefaultViewer())
	}
	name, args := fields[0], fields[1:]

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("viewer %q is not installed or not in PATH: %w", name, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file not found: %s", absPath)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, append(args, absPath)...)
	output, err := cmd.CombinedOutput()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("viewer timed out after %v", timeout)
	}
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return fmt.Errorf("viewer %s failed: %w: %s", name, err, out)
		}
		return fmt.Errorf("viewer %s failed: %w", name, err)
	}
	return nil
}
