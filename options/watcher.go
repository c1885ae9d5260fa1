package options

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffects/effects"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// ConfigWatcher reloads a config file when it changes and publishes every
// valid result. Invalid files are logged and skipped.
type ConfigWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *zap.Logger
	configs  chan effects.Config
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewConfigWatcher watches path. The parent directory is watched so files
// replaced by rename are still seen.
func NewConfigWatcher(path string, debounce time.Duration, log *zap.Logger) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		log:      log.With(zap.String("config", abs)),
		configs:  make(chan effects.Config, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Configs delivers reloaded configurations. Only the newest undelivered
// one is kept.
func (cw *ConfigWatcher) Configs() <-chan effects.Config { return cw.configs }

// Start begins watching in a goroutine.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.running {
		return nil
	}
	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		return err
	}
	cw.running = true
	go cw.run(ctx)
	cw.log.Debug("watching config file")
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	running := cw.running
	cw.running = false
	cw.mu.Unlock()

	if running {
		close(cw.stopCh)
		<-cw.doneCh
	}
	if err := cw.watcher.Close(); err != nil {
		cw.log.Error("failed to close watcher", zap.Error(err))
	}
}

func (cw *ConfigWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	timer := time.NewTimer(cw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(cw.debounce)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			cw.reload()
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := LoadConfig(cw.path)
	if err != nil {
		cw.log.Warn("config not applied", zap.Error(err))
		return
	}
	select {
	case <-cw.configs:
	default:
	}
	cw.configs <- cfg
	cw.log.Info("config reloaded")
}
