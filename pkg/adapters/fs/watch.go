package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit on a single save.
const DefaultDebounce = 50 * time.Millisecond

// ConfigWatcher calls OnChange whenever the watched config file is written,
// created or renamed into place. It watches the parent directory so atomic
// replacements are seen.
type ConfigWatcher struct {
	Path     string
	OnChange func(ctx context.Context) error
	Logger   *slog.Logger
	Debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	timer   *time.Timer
	pending sync.WaitGroup
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, onChange func(ctx context.Context) error, logger *slog.Logger) *ConfigWatcher {
	return &ConfigWatcher{
		Path:     path,
		OnChange: onChange,
		Logger:   logger,
		Debounce: DefaultDebounce,
	}
}

// Start begins watching. The loop ends when ctx is cancelled; use Wait to
// block until it has released the underlying watcher.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return errors.New("config watcher already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.Path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.Path), err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.logger().Error("config watcher stopped", "error", err)
	}))
	return nil
}

// Wait blocks until the loop started by Start has returned.
func (w *ConfigWatcher) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (w *ConfigWatcher) run(ctx context.Context) (err error) {
	defer close(w.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("config watcher panic: %v", recovered)
			if w.logger().Enabled(ctx, slog.LevelDebug) {
				w.logger().Error("config watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()
	defer w.pending.Wait()
	defer w.stopTimer()
	defer w.watcher.Close()

	target := filepath.Clean(w.Path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger().Debug("config change detected", "path", event.Name, "op", event.Op.String())
			w.schedule(ctx)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger().Error("fsnotify error", "error", wErr)
		}
	}
}

// schedule restarts the debounce timer. Only the last event of a burst fires.
func (w *ConfigWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce(), func() {
		defer w.pending.Done()
		if ctx.Err() != nil || w.OnChange == nil {
			return
		}
		if err := w.OnChange(ctx); err != nil {
			w.logger().Error("config change handler failed", "error", err)
		}
	})
}

func (w *ConfigWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.timer = nil
}

func (w *ConfigWatcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *ConfigWatcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// ComponentType implements introspection.Component.
func (w *ConfigWatcher) ComponentType() string {
	return "fs-config-watcher"
}
