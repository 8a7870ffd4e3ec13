package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the options file after it changes. onChange runs on the
// watcher's goroutine.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Options, error)
	log      *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewWatcher(path string, onChange func(*Options, error), log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		debounce: ReloadDebounce,
		onChange: onChange,
		log:      log.Named("config"),
	}, nil
}

// Start watches the file's directory, since editors often replace the file
// rather than write to it. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.run(ctx)
	w.log.Debug("watching config", zap.String("path", w.path))
	return nil
}

// Stop ends the watch and waits for the loop to exit. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done, fw := w.doneCh, w.watcher
	w.mu.Unlock()

	<-done
	if err := fw.Close(); err != nil {
		w.log.Warn("closing config watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		case now := <-ticker.C:
			if pending.IsZero() || now.Sub(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			opts, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed", zap.Error(err))
			} else {
				w.log.Info("config reloaded", zap.String("path", w.path))
			}
			w.onChange(opts, err)
		}
	}
}
