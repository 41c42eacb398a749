package templates

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// Watch reloads the rc file whenever it changes on disk and blocks until ctx
// is cancelled. Rapid saves are folded into one reload.
func (r *FileRepository) Watch(ctx context.Context, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// editors replace files on save, so watch the directory, not the file
	if err := watcher.Add(r.baseDir); err != nil {
		return err
	}
	rcPath := filepath.Join(r.baseDir, config.RCFileName)
	logger.Infow("watching rc file", map[string]any{"path": rcPath})

	timer := time.NewTimer(defaultDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(rcPath) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(defaultDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("rc watcher error", map[string]any{"error": err.Error()})

		case <-timer.C:
			rc := r.Reload()
			fields := map[string]any{"status": rc.Status.String(), "templates": len(r.List())}
			if rc.Err != nil {
				fields["error"] = rc.Err.Error()
				logger.Warnw("rc reloaded with errors", fields)
				continue
			}
			logger.Infow("rc reloaded", fields)
		}
	}
}
