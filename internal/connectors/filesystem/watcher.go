// Package filesystem watches a course documents folder and ingests files as
// they appear or change.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// DefaultDebounce is how long a path must be quiet before it is ingested.
// Editors and copy tools emit several events per save.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatcherRunning is returned when Run is called twice.
var ErrWatcherRunning = errors.New("watcher already running")

// Result reports the ingestion of one changed file.
type Result struct {
	Path   string
	Report *domain.FileReport
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithResultHandler registers a callback invoked after each ingestion attempt.
func WithResultHandler(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// Watcher ingests supported files created or written directly inside root.
// Subdirectories are not watched, matching folder ingestion.
type Watcher struct {
	root     string
	ingest   driving.IngestService
	exts     map[string]bool
	debounce time.Duration
	onResult func(Result)

	mu      sync.Mutex
	pending map[string]*time.Timer
	running bool
	ready   chan struct{}

	// ingestMu serialises ingestion so two saves of one file never race.
	ingestMu sync.Mutex
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for root.
func NewWatcher(root string, ingest driving.IngestService, opts ...Option) *Watcher {
	exts := make(map[string]bool)
	for _, ext := range ingest.SupportedExtensions() {
		exts[strings.ToLower(ext)] = true
	}

	w := &Watcher{
		root:     root,
		ingest:   ingest,
		exts:     exts,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Ready is closed once the folder is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the folder until ctx is cancelled.
// Pending ingestions finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherRunning
	}
	w.running = true
	w.mu.Unlock()

	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: %w: not a directory", w.root, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.root); err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	close(w.ready)

	log := logger.With("root", w.root)
	log.Infof("Watching for course documents")

	defer w.drain()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch error: %v", err)
		}
	}
}

// handleFsEvent returns the path to ingest for an event, if any.
// Only creates and writes of visible, supported regular files count.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	if filepath.Clean(filepath.Dir(event.Name)) != filepath.Clean(w.root) {
		return "", false
	}
	if !w.exts[strings.ToLower(filepath.Ext(base))] {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.ingestOne(ctx, path)
	})
	w.pending[path] = timer
}

func (w *Watcher) ingestOne(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	w.ingestMu.Lock()
	report, err := w.ingest.IngestFile(ctx, path)
	w.ingestMu.Unlock()

	log := logger.With("path", path)
	switch {
	case err != nil:
		log.Warnf("ingest failed: %v", err)
	case report.Status == domain.IngestStatusDuplicate:
		log.Infof("%q already indexed", report.CourseTitle)
	default:
		log.Infof("indexed %q (%d passages)", report.CourseTitle, report.PassageCount)
	}

	if w.onResult != nil {
		w.onResult(Result{Path: path, Report: report, Err: err})
	}
}

// drain cancels timers that have not fired and waits for running ingestions.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
