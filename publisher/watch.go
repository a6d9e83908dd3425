package publisher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch repeats the publishing pass until the context is cancelled.
// Filesystem events trigger an immediate pass; the interval tick is
// the fallback for filesystems without event support. Either way the
// change tracker decides whether anything actually needs rebuilding,
// so a spurious wake-up costs one cheap load pass.
func (p *Publisher) watch(ctx context.Context) error {
	p.state = StateWatching

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.log.Warn("filesystem events unavailable, polling only", "error", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}
	p.refreshWatches(watcher)

	var (
		events <-chan fsnotify.Event
		errors <-chan error
	)
	if watcher != nil {
		events = watcher.Events
		errors = watcher.Errors
	}

	ticker := time.NewTicker(p.opts.WatchInterval)
	defer ticker.Stop()

	p.log.Info("watching for changes", "interval", p.opts.WatchInterval)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("watch cancelled")
			p.state = StateIdle
			return nil
		case <-ticker.C:
		case ev := <-events:
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			p.log.Debug("filesystem event", "op", ev.Op.String(), "name", ev.Name)
		case err := <-errors:
			p.log.Warn("watch error", "error", err)
			continue
		}

		changed, err := p.runOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.state = StateIdle
				return nil
			}
			return err
		}
		p.state = StateWatching
		if changed {
			p.refreshWatches(watcher)
		}
	}
}

// refreshWatches registers the directory of every current artifact.
// Re-adding a watched directory is a no-op, so this simply picks up
// directories that appeared since the last pass.
func (p *Publisher) refreshWatches(watcher *fsnotify.Watcher) {
	if watcher == nil {
		return
	}
	dirs := map[string]struct{}{
		filepath.Dir(p.controlPath): {},
	}
	for _, f := range p.tracker.Files() {
		if f.Path != "" {
			dirs[filepath.Dir(f.Path)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			p.log.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}
}
