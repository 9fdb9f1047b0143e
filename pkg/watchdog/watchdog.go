// Package watchdog gives observable form to the documented hazard that
// running two engine instances against the same data directory is
// undefined: it watches the directory and logs a warning on every write
// or create event, without telling the engine's own writes apart.
package watchdog

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watchdog watches a data directory for unexpected writers.
type Watchdog struct {
	watcher *fsnotify.Watcher
	log     *zap.SugaredLogger
	done    chan struct{}
}

// Start begins watching dir, logging a warning through log whenever a
// write or create event is observed. The engine's own writes trigger
// this too; the watchdog is a coarse signal for operators running more
// than one instance against the same directory, not a precise audit
// trail.
func Start(dir string, log *zap.SugaredLogger) (*Watchdog, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watchdog{watcher: watcher, log: log, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watchdog) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && w.log != nil {
				w.log.Warnw("unexpected write to data directory; another process may be sharing it",
					"path", event.Name, "op", event.Op.String())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warnw("watchdog error", "error", err)
			}
		case <-w.done:
			return
		}
	}
}

// Close stops watching and releases the underlying inotify handle.
func (w *Watchdog) Close() error {
	if w == nil {
		return nil
	}
	close(w.done)
	return w.watcher.Close()
}
