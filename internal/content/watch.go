package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates the cache whenever a markdown file under the library
// changes. It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := []string{l.dir}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("content: list %s: %w", l.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(l.dir, e.Name()))
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("content: watch %s: %w", dir, err)
		}
	}
	l.logger.Info("content: watching for changes", zap.Strings("dirs", dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if !strings.HasSuffix(event.Name, ".md") || event.Op == fsnotify.Chmod {
				continue
			}
			l.Invalidate()
			l.logger.Debug("content: cache invalidated", zap.String("file", event.Name), zap.String("op", event.Op.String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("content: watcher error", zap.Error(err))
		}
	}
}
