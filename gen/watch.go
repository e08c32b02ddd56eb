package gen

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/logger"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-runs generation when an input document changes.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.SugaredLogger

	mu    sync.Mutex
	timer *time.Timer
	fire  chan struct{}
}

// NewWatcher watches the given input files. Their parent directories are
// watched so that editors replacing a file by rename are still seen.
func NewWatcher(paths []string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:    map[string]bool{},
		watcher:  fw,
		debounce: debounce,
		log:      log,
		fire:     make(chan struct{}, 1),
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run calls fn whenever a watched file settles after a change, until ctx is
// done. Calls never overlap. An error from fn is logged and watching goes on.
func (w *Watcher) Run(ctx context.Context, fn func() error) error {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Input changed", logger.FieldFile, event.Name, "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)

		case <-w.fire:
			start := time.Now()
			if err := fn(); err != nil {
				w.log.Errorw("Regeneration failed", logger.ErrorFields(err)...)
				continue
			}
			w.log.Infow("Regenerated", logger.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && w.files[abs]
}

// schedule restarts the debounce timer; when it expires one run is queued.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
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
