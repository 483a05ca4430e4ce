package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher calls a reload function when the sqlite cache file is written by another
// process, such as a scheduled `planeboard sync`. Bursts of writes are coalesced.
type Watcher struct {
	fs       *fsnotify.Watcher
	base     string
	debounce time.Duration
	reload   func(ctx context.Context) error
	log      log.FieldLogger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch starts watching dbPath. reload runs on the watcher goroutine.
func Watch(dbPath string, debounce time.Duration, reload func(ctx context.Context) error, logger log.FieldLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fs:       fw,
		base:     filepath.Base(dbPath),
		debounce: debounce,
		reload:   reload,
		log:      logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// relevant matches the database file and its -wal/-journal companions.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.base)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.WithError(err).Warn("cache watcher error")
			}
		case <-timer.C:
			if err := w.reload(ctx); err != nil && w.log != nil {
				w.log.WithError(err).Warn("reload after cache change failed")
			}
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.fs.Close()
		<-w.done
	})
	return err
}
