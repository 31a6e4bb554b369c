// Package watcher re-parses a schedule file whenever it changes on disk.
package watcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/opencode-ai/lorasched/internal/logging"
	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Relative parses the file as a proportional schedule.
	Relative bool

	// Debounce coalesces bursts of writes. Zero uses DefaultDebounce.
	Debounce time.Duration
}

// Result is the outcome of parsing the watched file once.
type Result struct {
	Path     string
	Schedule *schedule.Schedule
	Err      error
	At       time.Time
}

// OK reports whether the file parsed cleanly.
func (r Result) OK() bool {
	return r.Err == nil && r.Schedule != nil
}

// Watcher follows a single schedule file.
type Watcher struct {
	path     string
	relative bool
	debounce time.Duration
	logger   zerolog.Logger

	last    []byte
	hasLast bool
}

// New creates a watcher for path.
func New(path string, opts Options) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("schedule path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		relative: opts.Relative,
		debounce: debounce,
		logger:   logging.Component("watcher"),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Check reads and parses the file once.
func (w *Watcher) Check() Result {
	res := Result{Path: w.path, At: time.Now()}
	data, err := os.ReadFile(w.path)
	if err != nil {
		res.Err = fmt.Errorf("read schedule: %w", err)
		return res
	}
	w.last = data
	w.hasLast = true

	if w.relative {
		res.Schedule, res.Err = schedule.ParseRelative(string(data))
	} else {
		res.Schedule, res.Err = schedule.Parse(string(data))
	}
	return res
}

// Run reports the current state of the file, then reports again after every
// change until ctx is cancelled. fn is called from Run's goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(Result)) error {
	if fn == nil {
		return fmt.Errorf("result handler is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so editors that replace the file are still seen.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug().Str("path", w.path).Msg("watching schedule")

	fn(w.Check())

	file := filepath.Base(w.path)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug().Str("op", ev.Op.String()).Msg("schedule change detected")
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			w.logger.Warn().Err(err).Str("dir", dir).Msg("file watcher error")
		case <-timer.C:
			if w.unchanged() {
				w.logger.Debug().Str("path", w.path).Msg("schedule unchanged; skipping")
				continue
			}
			fn(w.Check())
		}
	}
}

func (w *Watcher) unchanged() bool {
	if !w.hasLast {
		return false
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false
	}
	return bytes.Equal(data, w.last)
}
