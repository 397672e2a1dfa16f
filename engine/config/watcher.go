package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk and stages the
// resulting post-process configuration until Pending collects it. Edits that
// fail to load or validate are logged and leave the previous stage intact.
type Watcher struct {
	mu      sync.Mutex
	path    string
	dir     string
	watcher *fsnotify.Watcher
	logger  log.Logger
	onLoad  func(File, error)

	file    File
	pending *postprocess.Config
	reloads int

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

// NewWatcher loads path and starts watching it.
//
// Parameters:
//   - path: a TOML or YAML config file
//   - options: functional options
//
// Returns:
//   - *Watcher: the watcher; call Close when done
//   - error: the initial load or validation error, or an fsnotify error
func NewWatcher(path string, options ...WatcherBuilderOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	w := &Watcher{
		path:   abs,
		dir:    filepath.Dir(abs),
		logger: log.New("config"),
		done:   make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}

	f, _, err := w.load()
	if err != nil {
		return nil, err
	}
	w.file = f

	// Editors often replace the file, so the directory is watched.
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", w.dir, err)
	}
	w.watcher = fw

	w.wg.Add(1)
	go w.watch()
	w.logger.Infof("watching %s", w.path)
	return w, nil
}

// File returns the last successfully loaded file.
func (w *Watcher) File() File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Reloads returns how many reloads have been staged.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Pending returns the newest staged configuration and clears it.
//
// Returns:
//   - postprocess.Config: the staged configuration
//   - bool: false when nothing is staged
func (w *Watcher) Pending() (postprocess.Config, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return postprocess.Config{}, false
	}
	cfg := *w.pending
	w.pending = nil
	return cfg, true
}

// Reload loads the file now and stages it on success.
//
// Returns:
//   - error: the load or validation error; the previous stage is kept
func (w *Watcher) Reload() error {
	f, post, err := w.load()
	if w.onLoad != nil {
		w.onLoad(f, err)
	}
	if err != nil {
		w.logger.Warningf("reload %s: %v", w.path, err)
		return err
	}
	w.mu.Lock()
	w.file = f
	w.pending = &post
	w.reloads++
	w.mu.Unlock()
	w.logger.Noticef("reloaded %s", w.path)
	return nil
}

// Close stops watching. Later calls return the first call's result.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) load() (File, postprocess.Config, error) {
	f, err := Load(w.path)
	if err != nil {
		return File{}, postprocess.Config{}, err
	}
	if err := f.Validate(w.dir); err != nil {
		return File{}, postprocess.Config{}, err
	}
	post, err := f.PostProcessConfig(w.dir)
	if err != nil {
		return File{}, postprocess.Config{}, err
	}
	return f, post, nil
}

func (w *Watcher) watch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debugf("%s: %s", event.Op, event.Name)
			_ = w.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("watch %s: %v", w.path, err)
		}
	}
}
