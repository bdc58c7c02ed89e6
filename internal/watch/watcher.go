// Package watch re-walks a capture file whenever it is written.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/xferdump/internal/dump"
	"github.com/bft-labs/xferdump/pkg/log"
)

// Runner performs one walk. *dump.Dumper satisfies it.
type Runner interface {
	RunIfChanged(ctx context.Context) (dump.Summary, bool, error)
}

// Watcher monitors a single input file via fsnotify.
type Watcher struct {
	input    string
	runner   Runner
	debounce time.Duration
	logger   log.Logger

	mu    sync.Mutex
	timer *time.Timer
	runs  chan struct{}
}

// New creates a Watcher for input.
func New(input string, runner Runner, debounce time.Duration, logger log.Logger) *Watcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		input:    input,
		runner:   runner,
		debounce: debounce,
		logger:   logger,
		runs:     make(chan struct{}, 1),
	}
}

// Run walks the input once, then again after every write until ctx is done.
// Walk errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are still seen.
	dir := filepath.Dir(w.input)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching input", log.String("input", w.input))

	w.walk(ctx)

	target := filepath.Clean(w.input)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case <-w.runs:
			w.walk(ctx)

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

// schedule coalesces bursts of events into one walk after the debounce delay.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.runs <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) walk(ctx context.Context) {
	sum, skipped, err := w.runner.RunIfChanged(ctx)
	switch {
	case err != nil:
		w.logger.Error("walk failed", log.String("input", w.input), log.Err(err))
	case skipped:
		w.logger.Debug("input unchanged", log.String("input", w.input))
	default:
		w.logger.Info("walked input", log.String("input", w.input), log.Int("frames", sum.Frames))
	}
}
