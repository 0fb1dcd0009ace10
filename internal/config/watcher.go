package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cinetrack/cinetrack/internal/logger"
)

// FileWatcher reloads the configuration when the config file changes on disk.
type FileWatcher struct {
	manager *ConfigManager
	watcher *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debounceDelay time.Duration

	reloadMu      sync.Mutex
	pendingReload *time.Timer
}

// NewFileWatcher creates a watcher bound to the manager's loaded config path.
func NewFileWatcher(manager *ConfigManager) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FileWatcher{
		manager:       manager,
		watcher:       watcher,
		ctx:           ctx,
		cancel:        cancel,
		debounceDelay: 500 * time.Millisecond,
	}, nil
}

// Start begins watching. It is a no-op when no config file was loaded.
func (fw *FileWatcher) Start() error {
	path := fw.manager.ConfigPath()
	if path == "" {
		logger.Debug("No config file loaded, skipping config watcher")
		return nil
	}

	// Watch the directory: editors replace the file on save, which would
	// drop a watch on the file itself.
	if err := fw.watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	fw.wg.Add(1)
	go fw.loop(path)

	logger.Info("Watching config file for changes: %s", path)
	return nil
}

// Stop terminates the watcher.
func (fw *FileWatcher) Stop() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) loop(path string) {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.scheduleReload(path)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// scheduleReload debounces rapid write events into a single reload.
func (fw *FileWatcher) scheduleReload(path string) {
	fw.reloadMu.Lock()
	defer fw.reloadMu.Unlock()

	if fw.pendingReload != nil {
		fw.pendingReload.Stop()
	}

	fw.pendingReload = time.AfterFunc(fw.debounceDelay, func() {
		if err := fw.manager.LoadConfig(path); err != nil {
			logger.Error("Config reload failed, keeping previous config: %v", err)
			return
		}
		logger.Info("Configuration reloaded from %s", path)
	})
}
