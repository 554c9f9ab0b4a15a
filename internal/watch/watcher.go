// Package watch notifies when the contents of the applications directory
// change, so an open results view can rescan.
package watch

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DirWatcher watches a single directory (not recursively)
type DirWatcher struct {
	path     string
	interval time.Duration // Polling interval when fsnotify is unavailable
	debounce time.Duration // Quiet period before a burst of events is reported
	logger   *zap.Logger
}

// NewDirWatcher creates a new directory watcher
func NewDirWatcher(path string, logger *zap.Logger) *DirWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirWatcher{
		path:     path,
		interval: 2 * time.Second,
		debounce: 500 * time.Millisecond,
		logger:   logger,
	}
}

// SetIntervals overrides the polling interval and debounce period
func (w *DirWatcher) SetIntervals(interval, debounce time.Duration) {
	w.interval = interval
	w.debounce = debounce
}

// Start watches until ctx is cancelled. The returned channel receives one
// value per settled burst of changes and is closed when watching stops.
// Bursts that arrive before the previous value is consumed are coalesced.
func (w *DirWatcher) Start(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	go w.run(ctx, out)
	return out
}

func (w *DirWatcher) run(ctx context.Context, out chan struct{}) {
	defer close(out)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("fsnotify not available, falling back to polling", zap.Error(err))
		w.poll(ctx, out)
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warn("Failed to close watcher", zap.Error(err))
		}
	}()

	if err := watcher.Add(w.path); err != nil {
		w.logger.Warn("Failed to watch directory, falling back to polling",
			zap.String("dir", w.path),
			zap.Error(err))
		w.poll(ctx, out)
		return
	}

	w.logger.Debug("Directory watcher started", zap.String("dir", w.path))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				w.poll(ctx, out)
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			settle = time.After(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				w.poll(ctx, out)
				return
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case <-settle:
			settle = nil
			notify(out)
		}
	}
}

// poll compares directory snapshots on a fixed interval
func (w *DirWatcher) poll(ctx context.Context, out chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := snapshot(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := snapshot(w.path)
			if current != last {
				last = current
				notify(out)
			}
		}
	}
}

// snapshot summarises the directory listing; "" when unreadable
func snapshot(path string) string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Name())
		if info, err := entry.Info(); err == nil {
			b.WriteString("@")
			b.WriteString(info.ModTime().Format(time.RFC3339Nano))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func notify(out chan struct{}) {
	select {
	case out <- struct{}{}:
	default:
	}
}
