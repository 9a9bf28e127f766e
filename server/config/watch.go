package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the Provider whenever its file changes on disk, calling onReload
// after every successful reload. It blocks until ctx is cancelled. Bursts of
// events within a short window cause a single reload.
func (p *Provider) Watch(ctx context.Context, onReload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so the directory is watched instead.
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("Config watcher error.", "path", p.path, "error", err)
		case <-pending:
			pending = nil
			if err := p.Reload(); err != nil {
				p.log.Error("Reload configuration.", "path", p.path, "error", err)
				continue
			}
			p.log.Info("Configuration reloaded.", "path", p.path)
			if onReload != nil {
				onReload()
			}
		}
	}
}
