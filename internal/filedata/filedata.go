// Package filedata is the local-file refresh collaborator: it loads a
// definitions JSON file and re-delivers it to the sink whenever the file
// changes. Useful for development and for hosts that ship definitions via
// config management instead of a network endpoint. File deliveries are always
// non-remote: they never trigger user-visible refresh handlers.
package filedata

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Sink matches fetch.Sink; file sources only ever report isRemote=false.
type Sink interface {
	OnFetched(data []byte, isRemote bool) error
	OnFetchFailed(err error, isRemote bool)
}

// Watcher delivers a definitions file to the sink and follows updates.
type Watcher struct {
	sink Sink
	path string

	fsw    *fsnotify.Watcher
	wg     sync.WaitGroup
	closed int32
}

// New creates a watcher for path. Call Start to load and watch.
func New(sink Sink, path string) *Watcher {
	return &Watcher{sink: sink, path: path}
}

// Start performs the initial load, then watches the file's directory for
// changes. Watching the directory instead of the file keeps the watch alive
// across the rename-over-write pattern editors and atomic writers use.
func (w *Watcher) Start() error {
	w.load()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.worker()
	return nil
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() {
	if !atomic.CompareAndSwapInt32(&w.closed, 0, 1) {
		return
	}
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) worker() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
				w.load()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("filedata: watch error: %v", err)
		}
	}
}

func (w *Watcher) load() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.sink.OnFetchFailed(fmt.Errorf("read definitions file: %w", err), false)
		return
	}
	_ = w.sink.OnFetched(data, false)
}
