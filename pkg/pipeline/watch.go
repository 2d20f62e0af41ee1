package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/blendmeta/pkg/parser"
)

// DefaultDebounceMs groups editor save bursts into one regeneration.
const DefaultDebounceMs = 200

// WatchOptions configures the watcher.
type WatchOptions struct {
	// DebounceMs is the quiet period per component before regenerating.
	DebounceMs int
	// OnProcessed, if set, is called after every regeneration.
	OnProcessed func(Outcome)
}

// Watcher regenerates a component's metadata whenever a source file in its
// directory changes.
//
// Usage:
//
//	w, err := NewWatcher(gen, WatchOptions{}, logger)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx) // blocks until ctx is cancelled
type Watcher struct {
	gen     *Generator
	watcher *fsnotify.Watcher
	root    string
	options WatchOptions
	logger  *slog.Logger

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
	inflight       sync.WaitGroup

	stopChan chan struct{}
	done     chan struct{}
	stopped  bool
	started  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over the generator's components directory.
func NewWatcher(gen *Generator, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultDebounceMs
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		gen:            gen,
		watcher:        fw,
		root:           filepath.Clean(gen.Config().ComponentsDir),
		options:        options,
		logger:         logger,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

// Start watches the components root and each component directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", w.root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && !w.gen.Excluded(entry.Name()) {
			w.addComponentDir(filepath.Join(w.root, entry.Name()))
		}
	}

	w.started = true
	go w.eventLoop()

	w.logger.Info("watching components", "root", w.root, "debounce_ms", w.options.DebounceMs)
	return nil
}

// Stop stops watching, cancels pending regenerations and waits for any
// regeneration already running. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.inflight.Wait()
	w.logger.Info("watcher stopped")
	return err
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Pending returns the number of components waiting for their debounce timer.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.debounceTimers)
}

func (w *Watcher) addComponentDir(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch component directory", "path", dir, "error", err)
	}
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// handleEvent maps a filesystem event to the component it belongs to.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	component, isDirEvent := w.componentFor(event.Name)
	if component == "" || w.gen.Excluded(component) {
		return
	}

	if isDirEvent {
		if event.Op&fsnotify.Create == fsnotify.Create {
			w.addComponentDir(event.Name)
			w.debounce(component)
		}
		return
	}

	if parser.DetectLanguage(event.Name) == parser.LanguageUnknown {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.logger.Debug("source changed", "op", event.Op.String(), "file", event.Name)
		w.debounce(component)
	}
}

// componentFor returns the component directory name for a path below the
// root. isDirEvent is true for the component directory itself.
func (w *Watcher) componentFor(path string) (component string, isDirEvent bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) == 1 {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return "", false
		}
		return parts[0], true
	}
	if len(parts) != 2 {
		// Nested folders are not candidate locations.
		return "", false
	}
	return parts[0], false
}

func (w *Watcher) debounce(component string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounceTimers[component]; ok {
		timer.Stop()
	}
	w.debounceTimers[component] = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			w.debounceMu.Lock()
			delete(w.debounceTimers, component)
			w.debounceMu.Unlock()

			w.regenerate(component)
		},
	)
}

func (w *Watcher) regenerate(component string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	outcome := w.gen.ProcessComponent(component)
	if w.options.OnProcessed != nil {
		w.options.OnProcessed(outcome)
	}
}
