package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/vbsym/internal/debug"
	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

// EventOp says what happened to a watched file.
type EventOp int

const (
	FileChanged EventOp = iota // created or written
	FileRemoved                // removed or renamed away
)

func (op EventOp) String() string {
	if op == FileRemoved {
		return "removed"
	}
	return "changed"
}

// Event is one settled change of a matching file.
type Event struct {
	Path string
	Op   EventOp
}

// WatchOptions selects the files a Watcher reports.
type WatchOptions struct {
	Include     []string
	Exclude     []string
	Debounce    time.Duration
	MaxFileSize int64 // zero disables the limit
}

// Watcher reports changes below a directory tree through a debouncer, so a
// burst of writes to one file yields one Event.
type Watcher struct {
	root      string
	opts      WatchOptions
	fs        *fsnotify.Watcher
	debouncer *Debouncer[Event]

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching root. onEvent runs on a debouncer goroutine,
// once per settled file.
func NewWatcher(root string, opts WatchOptions, onEvent func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root: root,
		opts: opts,
		fs:   fsw,
		debouncer: NewDebouncer(opts.Debounce, func(_ string, ev Event) {
			onEvent(ev)
		}),
		done: make(chan struct{}),
	}
	if err := w.addWatches(root); err != nil {
		fsw.Close()
		return nil, vberrors.NewFileError("watch", root, err)
	}

	w.wg.Add(1)
	go w.processEvents()
	debug.LogWorkspace("watching %s\n", root)
	return w, nil
}

// Close stops the watcher, drops pending events and waits for its
// goroutines.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		w.debouncer.Stop()
	})
	return err
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(w.root, path); excludedDir(rel, w.opts.Exclude) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			debug.LogWorkspace("failed to watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			debug.LogWorkspace("watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}

	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if Matches(rel, w.opts.Include, w.opts.Exclude) {
			w.debouncer.Request(ev.Name, Event{Path: ev.Name, Op: FileRemoved})
		}
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := w.addWatches(ev.Name); err != nil {
				debug.LogWorkspace("failed to watch new directory %s: %v\n", ev.Name, err)
			}
		}
		return
	}
	if !Matches(rel, w.opts.Include, w.opts.Exclude) {
		return
	}
	if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
		debug.LogWorkspace("skipping oversized file %s (%d bytes)\n", ev.Name, info.Size())
		w.debouncer.Cancel(ev.Name)
		return
	}
	w.debouncer.Request(ev.Name, Event{Path: ev.Name, Op: FileChanged})
}
