// This file implements the BackgroundWorker that reloads catalogs off the
// UI thread.
package ui

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/watcher"
)

// WorkerState represents the current state of the background worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is loading catalogs.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string    // "load"
	Cause   error     // The underlying error
	Time    time.Time // When the error occurred
	Retries int       // Consecutive failures including this one
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// CatalogReadyMsg is sent to the UI when a changed catalog has been loaded.
type CatalogReadyMsg struct {
	Cities []catalog.City
	Hash   string
}

// CatalogErrorMsg is sent to the UI when loading fails.
type CatalogErrorMsg struct {
	Err         error
	Recoverable bool // True if we expect to recover on next file change
}

// Sender delivers messages to the UI. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// BackgroundWorker owns the catalog watcher, coalesces change bursts and
// loads catalogs off the UI thread. It never touches the tree; the UI
// reseeds from CatalogReadyMsg on its own update loop.
type BackgroundWorker struct {
	// Configuration
	paths         []string
	debounceDelay time.Duration

	// State
	mu       sync.RWMutex
	state    WorkerState
	dirty    bool // True if a change came in while processing
	started  bool
	lastHash string

	// Error tracking
	lastError  *WorkerError
	errorCount int

	// Components
	watcher *watcher.Watcher
	sender  Sender
	load    func(ctx context.Context, paths []string) ([]catalog.City, error)

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// WorkerConfig configures the BackgroundWorker.
type WorkerConfig struct {
	Paths         []string
	DebounceDelay time.Duration
	Sender        Sender
}

// NewBackgroundWorker creates a new background worker. Without paths there
// is nothing to watch and the worker only serves TriggerRefresh.
func NewBackgroundWorker(cfg WorkerConfig) (*BackgroundWorker, error) {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = watcher.DefaultDebounce
	}

	w := &BackgroundWorker{
		paths:         cfg.Paths,
		debounceDelay: cfg.DebounceDelay,
		sender:        cfg.Sender,
		load:          catalog.LoadAll,
		state:         WorkerIdle,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if len(cfg.Paths) > 0 {
		fw, err := watcher.NewWatcher(cfg.Paths,
			watcher.WithDebounceDuration(cfg.DebounceDelay),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}

	return w, nil
}

// SetSender attaches the UI program once it exists.
func (w *BackgroundWorker) SetSender(s Sender) {
	w.mu.Lock()
	w.sender = s
	w.mu.Unlock()
}

// Start begins watching for file changes.
// Start is idempotent - calling it multiple times has no effect.
func (w *BackgroundWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher != nil {
		if err := w.watcher.Start(); err != nil {
			// processLoop never ran, so Stop must not wait for it.
			w.mu.Lock()
			w.started = false
			w.mu.Unlock()
			return err
		}
		go w.processLoop()
	} else {
		// No watcher - close done channel immediately so Stop() doesn't block
		close(w.done)
	}

	return nil
}

// Stop halts the background worker and cleans up resources.
// Stop is idempotent - calling it multiple times has no effect.
func (w *BackgroundWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()

	if w.watcher != nil {
		w.watcher.Stop()
	}

	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
		}
	}
}

// TriggerRefresh reloads the catalogs now and reports the result even when
// the content is unchanged. Has no effect if the worker is stopped;
// coalesces with a running load.
func (w *BackgroundWorker) TriggerRefresh() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.lastHash = ""
	if w.state == WorkerProcessing {
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	go w.process()
}

// State returns the current worker state.
func (w *BackgroundWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *BackgroundWorker) processLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.watcher.Changed():
			w.process()
		}
	}
}

func (w *BackgroundWorker) process() {
	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerProcessing {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerProcessing
	w.dirty = false
	w.mu.Unlock()

	msg := w.reload()

	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	sender := w.sender
	w.mu.Unlock()

	if sender != nil && msg != nil {
		sender.Send(msg)
	}

	if wasDirty {
		go w.process()
	}
}

// reload loads every catalog and returns the message for the UI, or nil if
// the content is unchanged since the last successful load.
func (w *BackgroundWorker) reload() tea.Msg {
	start := time.Now()

	var cities []catalog.City
	loadErr := w.safeCompute("load", func() error {
		var err error
		cities, err = w.load(w.ctx, w.paths)
		return err
	})
	if loadErr != nil {
		log.Printf("warning: reloading catalogs: %v", loadErr)
		w.recordError(loadErr)
		return CatalogErrorMsg{Err: loadErr, Recoverable: true}
	}
	w.recordError(nil)

	hash := catalog.Hash(cities)

	w.mu.Lock()
	unchanged := hash == w.lastHash
	w.lastHash = hash
	w.mu.Unlock()

	if unchanged {
		log.Printf("reload: content unchanged (hash=%s), skipping", hashPrefix(hash))
		return nil
	}

	log.Printf("reload: loaded %d cities in %v (hash=%s)", len(cities), time.Since(start), hashPrefix(hash))
	return CatalogReadyMsg{Cities: cities, Hash: hash}
}

// safeCompute executes fn and recovers from any panics.
func (w *BackgroundWorker) safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{
				Phase: phase,
				Cause: err,
				Time:  time.Now(),
			}
		}
	}()
	return result
}

func (w *BackgroundWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	w.lastError = err
	if err != nil {
		w.errorCount++
		err.Retries = w.errorCount
	} else {
		w.errorCount = 0
	}
	w.mu.Unlock()
}

// LastError returns the most recent error (nil if the last load succeeded).
func (w *BackgroundWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

// SetBaseline records the hash of the catalog the UI was seeded with, so the
// first reload of identical content is not reported.
func (w *BackgroundWorker) SetBaseline(hash string) {
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}

// LastHash returns the content hash of the last successful load.
func (w *BackgroundWorker) LastHash() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHash
}

// hashPrefix returns up to 16 characters of hash for logging.
func hashPrefix(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
