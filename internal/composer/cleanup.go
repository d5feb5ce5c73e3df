package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// claim takes an exclusive lock next to the manifest so two watchers sharing
// an input folder never render the same job. ok is false when another
// process holds it.
func (c *implComposer) claim(ctx context.Context, manifestPath string) (release func(), ok bool, err error) {
	lockPath := manifestPath + ".lock"
	lock := flock.New(lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, false, nil
	}

	release = func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn(ctx, "Failed to release lock %s: %v", lockPath, err)
		}
		c.cleanupTempFile(ctx, lockPath)
	}
	return release, true, nil
}

// moveToArchived moves a processed manifest out of the input folder
func (c *implComposer) moveToArchived(ctx context.Context, manifestPath string) error {
	if err := os.MkdirAll(c.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}
	destPath := filepath.Join(c.cfg.Paths.Archived, filepath.Base(manifestPath))

	c.logger.Info(ctx, "Moving to archived folder: %s -> %s", manifestPath, destPath)

	if err := os.Rename(manifestPath, destPath); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}

// removeWorkDir deletes a job's scratch directory, logs warning if fails
func (c *implComposer) removeWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		c.logger.Warn(ctx, "Failed to cleanup job dir %s: %v", dir, err)
	} else {
		c.logger.Debug(ctx, "Cleaned up job dir: %s", dir)
	}
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (c *implComposer) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		c.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	}
}
